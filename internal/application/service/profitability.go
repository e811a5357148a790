package service

import (
	"math"

	"basiswatch/internal/domain/model"
)

// TotalTradingFees 四笔 maker 成交的总手续费（0.0290% × 4）
const (
	makerFeePercent  = 0.0290
	TotalTradingFees = makerFeePercent * 4 // 0.1160%
)

// Profitability 将价差、资金费推算与固定手续费假设合成收益指标
type Profitability struct{}

func NewProfitability() *Profitability {
	return &Profitability{}
}

// NetProfitPercent 净利润 % = 到期累计资金费率 - 价差 % - 手续费
func (p *Profitability) NetProfitPercent(spreadPct, cumulativeFundingPct, tradingFeesPct float64) float64 {
	return cumulativeFundingPct - spreadPct - tradingFeesPct
}

// NetProfitStandard 以交易所名义标准费率（0.01%/8h）计算的净利润 %
func (p *Profitability) NetProfitStandard(spreadPct, daysUntilExpiry float64) float64 {
	return StandardCumulativeFunding(daysUntilExpiry) - spreadPct - TotalTradingFees
}

// ReturnOnCapital 计算给定资金与杠杆下的年化资金收益率。
// Capital is split evenly across the two legs of the hedge; contracts are
// whole units, floored (under-allocation is the conservative choice).
func (p *Profitability) ReturnOnCapital(
	symbol string,
	capital, leverage, perpetualMarkPrice, netProfitPct, daysUntilExpiry float64,
) (model.ProfitabilityResult, bool) {
	if capital <= 0 || leverage <= 0 || perpetualMarkPrice <= 0 || daysUntilExpiry <= 0 {
		return model.ProfitabilityResult{}, false
	}

	initialMarginRate := 1 / leverage
	contractsPerSide := capital / 2 / (perpetualMarkPrice * initialMarginRate)
	contractsCount := int64(math.Floor(contractsPerSide))

	positionSize := float64(contractsCount) * perpetualMarkPrice
	netProfitQuote := positionSize * netProfitPct / 100
	returnOnCapital := (netProfitQuote / capital * 100) / daysUntilExpiry * 365

	return model.ProfitabilityResult{
		Symbol:             symbol,
		NetProfitPercent:   netProfitPct,
		NetProfitQuote:     netProfitQuote,
		ContractsCount:     contractsCount,
		PositionSize:       positionSize,
		ReturnOnCapitalPct: returnOnCapital,
	}, true
}
