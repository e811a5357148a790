package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"basiswatch/internal/application/port"

	"github.com/redis/go-redis/v9"
)

// Repo publishes the latest spreads into a hash, alerts into a stream and
// snapshots onto a pub/sub channel for push-based consumers.
type Repo struct {
	rdb          *redis.Client
	prefix       string
	ttl          time.Duration
	keySpreads   string // prefix + ":spreads"
	alertStream  string
	snapshotChan string
}

type latestSpread struct {
	Symbol        string  `json:"symbol"`
	Spread        float64 `json:"spread"`
	SpreadPercent float64 `json:"spread_percent"`
	Ts            int64   `json:"ts"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, alertStream, snapshotChan string) *Repo {
	if strings.TrimSpace(alertStream) == "" {
		alertStream = prefix + ":alerts"
	}
	if strings.TrimSpace(snapshotChan) == "" {
		snapshotChan = prefix + ":snapshots"
	}
	return &Repo{
		rdb:          rdb,
		prefix:       prefix,
		ttl:          ttl,
		keySpreads:   prefix + ":spreads",
		alertStream:  alertStream,
		snapshotChan: snapshotChan,
	}
}

func (r *Repo) UpsertLatestSpread(ctx context.Context, symbol string, spread, spreadPct float64, ts int64) error {
	ls := latestSpread{Symbol: symbol, Spread: spread, SpreadPercent: spreadPct, Ts: ts}
	b, _ := json.Marshal(ls)

	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keySpreads, symbol, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keySpreads, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// InsertSnapshot pushes the cycle snapshot to subscribed dashboards.
func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	return r.rdb.Publish(ctx, r.snapshotChan, payload).Err()
}

func (r *Repo) InsertAlert(ctx context.Context, ts int64, symbol, kind string, value float64, payload string) error {
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.alertStream,
		Values: map[string]any{
			"ts_ms":   ts,
			"symbol":  symbol,
			"kind":    kind,
			"value":   value,
			"payload": payload,
		},
	}).Result()
	return err
}

// Close is a no-op: the client lifecycle belongs to the container.
func (r *Repo) Close() error { return nil }

var _ port.Repository = (*Repo)(nil)
