package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"basiswatch/internal/application/port"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS spreads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  spread REAL NOT NULL,
  spread_percent REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(symbol)
);
CREATE INDEX IF NOT EXISTS idx_spreads_ts ON spreads(ts_ms);

CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_ms);

CREATE TABLE IF NOT EXISTS alerts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  symbol TEXT NOT NULL,
  kind TEXT NOT NULL,
  value REAL NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(ts_ms);
CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol);
`)
	return err
}

func (r *Repo) UpsertLatestSpread(ctx context.Context, symbol string, spread, spreadPct float64, ts int64) error {
	now := nowMs()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO spreads(symbol, spread, spread_percent, ts_ms, created_at)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(symbol) DO UPDATE SET
  spread = excluded.spread,
  spread_percent = excluded.spread_percent,
  ts_ms = excluded.ts_ms
`, symbol, spread, spreadPct, ts, now)
	return err
}

func (r *Repo) GetLatestSpread(ctx context.Context, symbol string) (spread, spreadPct float64, err error) {
	row := r.db.QueryRowContext(ctx, `SELECT spread, spread_percent FROM spreads WHERE symbol = ?`, symbol)
	err = row.Scan(&spread, &spreadPct)
	return spread, spreadPct, err
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO snapshots(ts_ms, payload, created_at) VALUES(?, ?, ?)
`, ts, payload, nowMs())
	return err
}

func (r *Repo) InsertAlert(ctx context.Context, ts int64, symbol, kind string, value float64, payload string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alerts(ts_ms, symbol, kind, value, payload, created_at) VALUES(?, ?, ?, ?, ?, ?)
`, ts, symbol, kind, value, payload, nowMs())
	return err
}

var _ port.Repository = (*Repo)(nil)

func nowMs() int64 { return time.Now().UnixMilli() }
