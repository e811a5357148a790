package port

import "context"

type Tick struct {
	Symbol    string  // "ETHUSDT", "ETHUSDT-26DEC25"
	LastPrice float64 // 0 when the update carried no last price
	MarkPrice float64 // 0 when the update carried no mark price
	Ts        int64   // unix ms
}

// PriceFeed streams live ticker updates between REST polls.
type PriceFeed interface {
	Name() string
	Subscribe(ctx context.Context, symbols []string) (<-chan Tick, error)
}
