package port

import "context"

type Repository interface {
	// Latest spread per dated contract
	UpsertLatestSpread(ctx context.Context, symbol string, spread, spreadPct float64, ts int64) error

	// Snapshot operations
	InsertSnapshot(ctx context.Context, ts int64, payload string) error

	// Alert operations
	InsertAlert(ctx context.Context, ts int64, symbol, kind string, value float64, payload string) error

	// Connection management
	Close() error
}
