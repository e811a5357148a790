package service

import (
	"context"
	"fmt"
	"time"

	"basiswatch/internal/application/port"
	"basiswatch/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// DefaultAlertCooldown is the minimum gap between two alerts of the same kind
// for the same symbol. Earlier revisions of this tool disagreed (5 min vs 1 h);
// it is a single configurable knob now, defaulting to the shorter variant.
const DefaultAlertCooldown = 300 * time.Second

const (
	AlertKindSpread = "spread_below_funding"
	AlertKindReturn = "return_on_capital"
)

// AlertPolicy 决定何时发送通知并记录冷却状态。
// Mutated only from the monitor loop (single writer).
type AlertPolicy struct {
	notifier port.Notifier
	cooldown time.Duration
	now      func() time.Time

	lastSpreadAlert map[string]time.Time
	lastReturnAlert map[string]time.Time
}

func NewAlertPolicy(notifier port.Notifier, cooldown time.Duration) *AlertPolicy {
	if cooldown <= 0 {
		cooldown = DefaultAlertCooldown
	}
	return &AlertPolicy{
		notifier:        notifier,
		cooldown:        cooldown,
		now:             time.Now,
		lastSpreadAlert: make(map[string]time.Time),
		lastReturnAlert: make(map[string]time.Time),
	}
}

// ShouldAlertSpread 判断价差是否低于资金费率减阈值。
//
// The funding rate is normalized to percent with a magnitude heuristic
// (raw < 1 is treated as a decimal fraction). Preserved from the original
// behavior; rates above 1% would pass through unscaled.
func ShouldAlertSpread(spreadPct, fundingRate, thresholdPct float64) bool {
	fundingRatePct := fundingRate
	if fundingRate < 1 {
		fundingRatePct = fundingRate * 100
	}
	return spreadPct < (fundingRatePct - thresholdPct)
}

// MaybeSpreadAlert 在条件满足且冷却期已过时发送价差信号，返回是否已发送。
// Cooldown state advances only on a confirmed send, so a failed delivery is
// retried on the next cycle.
func (a *AlertPolicy) MaybeSpreadAlert(ctx context.Context, spread model.SpreadResult, fundingRate, thresholdPct float64) bool {
	if !ShouldAlertSpread(spread.SpreadPercent, fundingRate, thresholdPct) {
		return false
	}

	now := a.now()
	if now.Sub(a.lastSpreadAlert[spread.FuturesSymbol]) < a.cooldown {
		log.Debug().Str("symbol", spread.FuturesSymbol).Msg("spread alert suppressed by cooldown")
		return false
	}

	if !a.notifier.Send(ctx, formatSpreadAlert(spread, fundingRate, thresholdPct, now)) {
		log.Error().Str("symbol", spread.FuturesSymbol).Msg("spread alert send failed")
		return false
	}

	a.lastSpreadAlert[spread.FuturesSymbol] = now
	log.Info().
		Str("symbol", spread.FuturesSymbol).
		Float64("spread_percent", spread.SpreadPercent).
		Msg("spread alert sent")
	return true
}

// MaybeReturnAlert 在年化收益率超过阈值且冷却期已过时发送收益信号。
func (a *AlertPolicy) MaybeReturnAlert(ctx context.Context, result model.ProfitabilityResult, threshold, daysUntilExpiry, capital, leverage float64) bool {
	if result.ReturnOnCapitalPct <= threshold {
		return false
	}

	now := a.now()
	if now.Sub(a.lastReturnAlert[result.Symbol]) < a.cooldown {
		log.Debug().Str("symbol", result.Symbol).Msg("return alert suppressed by cooldown")
		return false
	}

	if !a.notifier.Send(ctx, formatReturnAlert(result, threshold, daysUntilExpiry, capital, leverage, now)) {
		log.Error().Str("symbol", result.Symbol).Msg("return alert send failed")
		return false
	}

	a.lastReturnAlert[result.Symbol] = now
	log.Info().
		Str("symbol", result.Symbol).
		Float64("return_on_capital", result.ReturnOnCapitalPct).
		Msg("return on capital alert sent")
	return true
}

func formatSpreadAlert(spread model.SpreadResult, fundingRate, thresholdPct float64, now time.Time) string {
	fundingRatePct := fundingRate
	if fundingRate < 1 {
		fundingRatePct = fundingRate * 100
	}
	return fmt.Sprintf(
		"🚨 <b>Signal: spread below threshold</b>\n\n"+
			"📊 Contract: <code>%s</code>\n"+
			"📈 Spread: <b>%.4f%%</b>\n"+
			"💰 Funding rate: <b>%.4f%%</b>\n"+
			"⚡ Threshold: <b>%.2f%%</b>\n"+
			"📉 Difference: <b>%.4f%%</b>\n\n"+
			"⏰ %s",
		spread.FuturesSymbol,
		spread.SpreadPercent,
		fundingRatePct,
		thresholdPct,
		fundingRatePct-spread.SpreadPercent,
		now.Format("2006-01-02 15:04:05"),
	)
}

func formatReturnAlert(result model.ProfitabilityResult, threshold, daysUntilExpiry, capital, leverage float64, now time.Time) string {
	return fmt.Sprintf(
		"💎 <b>Signal: return on capital above threshold</b>\n\n"+
			"📊 Contract: <code>%s</code>\n"+
			"📈 Return on capital: <b>%.2f%% p.a.</b>\n"+
			"⚡ Threshold: <b>%.2f%%</b>\n"+
			"💰 Net profit: <b>%.2f USDT</b>\n"+
			"📅 Days until expiry: <b>%.1f</b>\n"+
			"💼 Capital: <b>%.0f USDT</b> at <b>%.0fx</b>\n\n"+
			"⏰ %s",
		result.Symbol,
		result.ReturnOnCapitalPct,
		threshold,
		result.NetProfitQuote,
		daysUntilExpiry,
		capital,
		leverage,
		now.Format("2006-01-02 15:04:05"),
	)
}
