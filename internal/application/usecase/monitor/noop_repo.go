package monitor

import (
	"context"

	"basiswatch/internal/application/port"
)

type noopRepo struct{}

func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) UpsertLatestSpread(ctx context.Context, symbol string, spread, spreadPct float64, ts int64) error {
	return nil
}
func (n *noopRepo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	return nil
}
func (n *noopRepo) InsertAlert(ctx context.Context, ts int64, symbol, kind string, value float64, payload string) error {
	return nil
}
func (n *noopRepo) Close() error { return nil }
