package monitor

import (
	"sync"

	"basiswatch/internal/application/port"
	"basiswatch/internal/domain/model"
)

// State holds the latest published snapshot. Only the monitor loop writes;
// readers get a consistent point-in-time copy.
type State struct {
	mu   sync.RWMutex
	snap model.Snapshot
}

func NewState() *State {
	return &State{
		snap: model.Snapshot{
			Spreads: map[string]model.SpreadResult{},
			Funding: map[string]model.FundingProjection{},
			Returns: map[string]model.ProfitabilityResult{},
		},
	}
}

func (s *State) Set(snap model.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Get returns a deep copy of the latest snapshot.
func (s *State) Get() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := model.Snapshot{
		Spreads:   make(map[string]model.SpreadResult, len(s.snap.Spreads)),
		Funding:   make(map[string]model.FundingProjection, len(s.snap.Funding)),
		Returns:   make(map[string]model.ProfitabilityResult, len(s.snap.Returns)),
		Timestamp: s.snap.Timestamp,
	}
	for k, v := range s.snap.Spreads {
		out.Spreads[k] = v
	}
	for k, v := range s.snap.Funding {
		out.Funding[k] = v
	}
	for k, v := range s.snap.Returns {
		out.Returns[k] = v
	}
	if s.snap.Perpetual != nil {
		p := *s.snap.Perpetual
		out.Perpetual = &p
	}
	return out
}

// ApplyTick refreshes snapshot prices from a live websocket update between
// REST polls. A dated-contract tick re-derives its spread against the
// perpetual price captured by the last full cycle.
func (s *State) ApplyTick(t port.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Perpetual != nil && s.snap.Perpetual.Symbol == t.Symbol {
		if t.LastPrice > 0 {
			s.snap.Perpetual.LastPrice = t.LastPrice
		}
		if t.MarkPrice > 0 {
			s.snap.Perpetual.MarkPrice = t.MarkPrice
		}
		s.snap.Perpetual.Timestamp = t.Ts
		return
	}

	sp, ok := s.snap.Spreads[t.Symbol]
	if !ok || sp.PerpetualPrice <= 0 {
		return
	}
	price := t.MarkPrice
	if price <= 0 {
		price = t.LastPrice
	}
	if price <= 0 {
		return
	}
	sp.FuturesPrice = price
	sp.Spread = price - sp.PerpetualPrice
	sp.SpreadPercent = sp.Spread / sp.PerpetualPrice * 100
	sp.ComputedAt = t.Ts
	s.snap.Spreads[t.Symbol] = sp
}
