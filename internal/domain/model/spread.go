package model

// SpreadResult 永续与交割合约之间的价差计算结果
type SpreadResult struct {
	FuturesSymbol  string  `json:"futures_symbol"`
	PerpetualPrice float64 `json:"perpetual_price"`
	FuturesPrice   float64 `json:"futures_price"`
	Spread         float64 `json:"spread"`         // futures - perpetual
	SpreadPercent  float64 `json:"spread_percent"` // spread / perpetual * 100
	ComputedAt     int64   `json:"computed_at"`    // unix ms
}

// FundingProjection 到期前累计资金费率的推算结果
type FundingProjection struct {
	Symbol                string  `json:"symbol"`
	DaysUntilExpiry       float64 `json:"days_until_expiry"`
	CumulativeFundingPct  float64 `json:"cumulative_funding_percent"`
	StandardCumulativePct float64 `json:"standard_cumulative_funding_percent"`
	FairPrice             float64 `json:"fair_price"`
	HistoryComplete       bool    `json:"history_complete"` // ≥95% of expected payments observed
	HistoryDays           int     `json:"history_days"`
}

// ProfitabilityResult 现金套保仓位的收益估算
type ProfitabilityResult struct {
	Symbol             string  `json:"symbol"`
	NetProfitPercent   float64 `json:"net_profit_percent"`
	NetProfitStandard  float64 `json:"net_profit_standard_percent"` // under the nominal 0.01%/8h rate
	NetProfitQuote     float64 `json:"net_profit_quote"`            // USDT
	ContractsCount     int64   `json:"contracts_count"`
	PositionSize       float64 `json:"position_size"`
	ReturnOnCapitalPct float64 `json:"return_on_capital_percent_annualized"`
}

// PerpetualSummary 永续合约侧的周期汇总
type PerpetualSummary struct {
	Symbol            string  `json:"symbol"`
	MarkPrice         float64 `json:"mark_price"`
	LastPrice         float64 `json:"last_price"`
	SpotPrice         float64 `json:"spot_price"`
	CurrentFundingPct float64 `json:"current_funding_rate"` // percent per 8h period
	AverageFundingPct float64 `json:"average_funding_rate"` // percent per 8h, over the configured lookback
	Timestamp         int64   `json:"ts_ms"`
}

// Snapshot 一个监控周期发布的只读快照
type Snapshot struct {
	Spreads   map[string]SpreadResult        `json:"spreads"`
	Funding   map[string]FundingProjection   `json:"funding"`
	Returns   map[string]ProfitabilityResult `json:"returns"`
	Perpetual *PerpetualSummary              `json:"perpetual,omitempty"`
	Timestamp int64                          `json:"ts_ms"`
}
