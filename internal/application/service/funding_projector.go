package service

import (
	"basiswatch/internal/domain/model"
)

const (
	// 每天 3 次资金费结算（每 8 小时一次）
	FundingPaymentsPerDay = 3

	// StandardFundingRate is the venue's nominal default rate per payment
	// (0.01% per 8h period, as a decimal fraction).
	StandardFundingRate = 0.0001

	// RiskFreeRateAnnual is the fixed cost-of-carry assumption for fair price.
	RiskFreeRateAnnual = 0.04

	// MaxHistoryDays caps the funding history window.
	MaxHistoryDays = 365

	// historyCompleteness: share of expected payments that must be present
	// before the history counts as complete.
	historyCompleteness = 0.95
)

// FundingProjector 根据资金费率历史推算到期前的累计资金收入
type FundingProjector struct{}

func NewFundingProjector() *FundingProjector {
	return &FundingProjector{}
}

// HistoryWindowDays returns the funding history window for a contract:
// floor(daysUntilExpiry), 30 when not positive, capped at MaxHistoryDays.
func HistoryWindowDays(daysUntilExpiry float64) int {
	days := int(daysUntilExpiry)
	if days <= 0 {
		days = 30
	}
	if days > MaxHistoryDays {
		days = MaxHistoryDays
	}
	return days
}

// Project 推算到期前的累计资金费率。daysUntilExpiry <= 0 时返回 ok=false。
//
// With a complete history (>=95% of expected payments) the average rate per
// payment is scaled over the payments remaining until expiry. A sparse history
// applies the identical scaling as a best-effort fallback; an empty history
// falls back to the current rate.
func (p *FundingProjector) Project(
	symbol string,
	history []model.FundingRecord,
	daysUntilExpiry float64,
	currentRate float64,
	spotPrice float64,
) (model.FundingProjection, bool) {
	if daysUntilExpiry <= 0 {
		return model.FundingProjection{}, false
	}

	historyDays := HistoryWindowDays(daysUntilExpiry)
	paymentsUntilExpiry := daysUntilExpiry * FundingPaymentsPerDay

	avgPerPayment := p.AverageRate(history, currentRate)
	complete := false
	if len(history) > 0 {
		expected := float64(historyDays * FundingPaymentsPerDay)
		complete = float64(len(history)) >= expected*historyCompleteness
	}

	return model.FundingProjection{
		Symbol:                symbol,
		DaysUntilExpiry:       daysUntilExpiry,
		CumulativeFundingPct:  avgPerPayment * paymentsUntilExpiry * 100,
		StandardCumulativePct: StandardCumulativeFunding(daysUntilExpiry),
		FairPrice:             FairPrice(spotPrice, daysUntilExpiry),
		HistoryComplete:       complete,
		HistoryDays:           historyDays,
	}, true
}

// AverageRate 历史记录的平均每期资金费率（小数），历史为空时退回当前费率。
func (p *FundingProjector) AverageRate(history []model.FundingRecord, currentRate float64) float64 {
	if len(history) == 0 {
		return currentRate
	}
	var total float64
	for _, rec := range history {
		total += rec.FundingRate
	}
	return total / float64(len(history))
}

// StandardCumulativeFunding 以固定标准费率推算的到期累计资金费率（百分比）
func StandardCumulativeFunding(daysUntilExpiry float64) float64 {
	return StandardFundingRate * daysUntilExpiry * FundingPaymentsPerDay * 100
}

// FairPrice 按简单持有成本模型计算交割合约的理论价格: F = S × (1 + r × T)
func FairPrice(spotPrice, daysUntilExpiry float64) float64 {
	if spotPrice <= 0 {
		return 0
	}
	return spotPrice * (1 + RiskFreeRateAnnual*daysUntilExpiry/365.0)
}

// FairSpreadPercent 理论价格相对永续标记价格的价差百分比。
// perpetualMarkPrice <= 0 时无定义（ok=false）。
func FairSpreadPercent(fairPrice, perpetualMarkPrice float64) (float64, bool) {
	if perpetualMarkPrice <= 0 {
		return 0, false
	}
	return (fairPrice - perpetualMarkPrice) / perpetualMarkPrice * 100, true
}
