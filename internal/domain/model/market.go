package model

// Ticker 合约行情快照（永续、交割或现货）
type Ticker struct {
	Symbol     string  `json:"symbol"`
	LastPrice  float64 `json:"last_price"`
	MarkPrice  float64 `json:"mark_price"`
	IndexPrice float64 `json:"index_price,omitempty"`
	Timestamp  int64   `json:"ts_ms"` // exchange server time, unix ms
}

// DatedContract 交割合约元信息，来自 instruments-info
type DatedContract struct {
	Symbol       string `json:"symbol"`
	ContractType string `json:"contract_type"`
	DeliveryTime int64  `json:"delivery_time"` // unix ms
	SettleCoin   string `json:"settle_coin"`
	Status       string `json:"status"`
}

// FundingRecord 单次资金费率结算记录
type FundingRecord struct {
	Symbol      string  `json:"symbol"`
	FundingRate float64 `json:"funding_rate"` // decimal fraction, 0.0001 = 0.01%
	Timestamp   int64   `json:"ts_ms"`
}
