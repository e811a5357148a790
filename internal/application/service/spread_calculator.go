package service

import (
	"time"

	"basiswatch/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// 价差幅度超过该值视为异常（仅告警，不拒绝）
const anomalousSpreadPct = 50.0

// degeneratePerpPrice substitutes a non-positive perpetual price so the
// percent stays defined. Deliberate policy, not silent truncation.
const degeneratePerpPrice = 1.0

// SpreadCalculator 计算永续与交割合约之间的价差
type SpreadCalculator struct{}

func NewSpreadCalculator() *SpreadCalculator {
	return &SpreadCalculator{}
}

// ComputeSpread 计算单个交割合约相对永续合约的价差
func (c *SpreadCalculator) ComputeSpread(perpetualPrice, futuresPrice float64, futuresSymbol string) model.SpreadResult {
	if perpetualPrice <= 0 {
		log.Warn().
			Str("symbol", futuresSymbol).
			Float64("perpetual_price", perpetualPrice).
			Msg("non-positive perpetual price, substituting fallback")
		perpetualPrice = degeneratePerpPrice
	}

	spread := futuresPrice - perpetualPrice
	spreadPct := spread / perpetualPrice * 100

	if spreadPct > anomalousSpreadPct || spreadPct < -anomalousSpreadPct {
		log.Warn().
			Str("symbol", futuresSymbol).
			Float64("spread_percent", spreadPct).
			Float64("perpetual_price", perpetualPrice).
			Float64("futures_price", futuresPrice).
			Msg("anomalous spread")
	}

	return model.SpreadResult{
		FuturesSymbol:  futuresSymbol,
		PerpetualPrice: perpetualPrice,
		FuturesPrice:   futuresPrice,
		Spread:         spread,
		SpreadPercent:  spreadPct,
		ComputedAt:     time.Now().UnixMilli(),
	}
}

// ComputeSpreads 对一组交割合约计算价差。永续价格无法解析为正数时返回空列表。
func (c *SpreadCalculator) ComputeSpreads(perpetual *model.Ticker, futures []*model.Ticker) []model.SpreadResult {
	if perpetual == nil {
		return nil
	}

	perpPrice := ResolvePerpetualPrice(perpetual)
	if perpPrice <= 0 {
		log.Error().
			Str("symbol", perpetual.Symbol).
			Float64("price", perpPrice).
			Msg("perpetual price unresolvable")
		return nil
	}

	out := make([]model.SpreadResult, 0, len(futures))
	for _, ft := range futures {
		if ft == nil {
			continue
		}
		out = append(out, c.ComputeSpread(perpPrice, ResolveFuturesPrice(ft), ft.Symbol))
	}
	return out
}

// ResolvePerpetualPrice prefers the last traded price for the perpetual leg
// (liquidity-accurate) and falls back to mark price.
func ResolvePerpetualPrice(t *model.Ticker) float64 {
	if t.LastPrice > 0 {
		return t.LastPrice
	}
	return t.MarkPrice
}

// ResolveFuturesPrice prefers mark price for the dated leg (manipulation-
// resistant) and falls back to last price.
func ResolveFuturesPrice(t *model.Ticker) float64 {
	if t.MarkPrice > 0 {
		return t.MarkPrice
	}
	return t.LastPrice
}
