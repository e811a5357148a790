package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Patch carries the fields that may change at runtime. Nil means "keep".
type Patch struct {
	SpreadThresholdPercent   *float64
	ReturnOnCapitalThreshold *float64
	FundingHistoryDays       *int
	IntervalSeconds          *int
	CapitalUSDT              *float64
	Leverage                 *float64
	PerpetualSymbol          *string
}

// Store holds the live configuration behind a single-writer lock. Computation
// components take a Config value from Get instead of reading shared state;
// a rejected update leaves the previous configuration in effect.
type Store struct {
	mu  sync.RWMutex
	cur Config
}

func NewStore(cfg *Config) *Store {
	return &Store{cur: *cfg}
}

// Get returns a point-in-time copy of the configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update validates and applies a patch, returning the resulting configuration.
func (s *Store) Update(p Patch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur
	if p.SpreadThresholdPercent != nil {
		next.Alerts.SpreadThresholdPercent = *p.SpreadThresholdPercent
	}
	if p.ReturnOnCapitalThreshold != nil {
		next.Alerts.ReturnOnCapitalThreshold = *p.ReturnOnCapitalThreshold
	}
	if p.FundingHistoryDays != nil {
		next.Funding.HistoryDays = *p.FundingHistoryDays
	}
	if p.IntervalSeconds != nil {
		next.App.IntervalSeconds = *p.IntervalSeconds
	}
	if p.CapitalUSDT != nil {
		if *p.CapitalUSDT <= 0 {
			return s.cur, fmt.Errorf("capital_usdt must be positive, got %v", *p.CapitalUSDT)
		}
		next.Capital.CapitalUSDT = *p.CapitalUSDT
	}
	if p.Leverage != nil {
		if *p.Leverage <= 0 {
			return s.cur, fmt.Errorf("leverage must be positive, got %v", *p.Leverage)
		}
		next.Capital.Leverage = *p.Leverage
	}
	if p.PerpetualSymbol != nil {
		next.Symbols.Perpetual = strings.ToUpper(strings.TrimSpace(*p.PerpetualSymbol))
	}

	if err := validate(&next); err != nil {
		return s.cur, err
	}

	s.cur = next
	log.Info().Msg("configuration updated")
	return s.cur, nil
}

// Replace swaps in a freshly loaded configuration (file watcher path).
func (s *Store) Replace(cfg *Config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = *cfg
	s.mu.Unlock()
	return nil
}
