package port

import (
	"context"

	"basiswatch/internal/domain/model"
)

// ContractKind selects the ticker category on the exchange.
type ContractKind string

const (
	KindPerpetual ContractKind = "perpetual"
	KindDated     ContractKind = "dated"
	KindSpot      ContractKind = "spot"
)

// MarketGateway is the exchange read capability. Implementations return nil /
// empty results on failure and never panic past this boundary.
type MarketGateway interface {
	// GetTicker returns the latest ticker for a symbol, or nil when unavailable.
	GetTicker(ctx context.Context, symbol string, kind ContractKind) *model.Ticker

	// ListDatedContracts returns the currently listed dated futures for a base
	// symbol, sorted by delivery time ascending.
	ListDatedContracts(ctx context.Context, baseSymbol string) []model.DatedContract

	// GetFundingHistory returns funding records over the last `days` days,
	// deduplicated by timestamp and sorted ascending.
	GetFundingHistory(ctx context.Context, symbol string, days int) []model.FundingRecord

	// GetCurrentFundingRate returns the most recent funding record, or nil.
	GetCurrentFundingRate(ctx context.Context, symbol string) *model.FundingRecord
}
