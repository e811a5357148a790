package monitor

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"basiswatch/internal/application/port"
	"basiswatch/internal/application/service"
	"basiswatch/internal/domain/model"
	"basiswatch/internal/infrastructure/config"

	"github.com/rs/zerolog/log"
)

const (
	msPerDay     = 86400 * 1000
	cycleTimeout = 30 * time.Second
)

type ServiceDeps struct {
	Gateway   port.MarketGateway
	Repo      port.Repository
	Config    *config.Store
	Policy    *service.AlertPolicy
	Feed      port.PriceFeed // optional live ticker stream
	Calc      *service.SpreadCalculator
	Projector *service.FundingProjector
	Profit    *service.Profitability
}

type Service struct {
	deps ServiceDeps
	st   *State

	// live feed subscription, keyed by the joined symbol list
	feedCancel context.CancelFunc
	feedKey    string
}

func NewService(deps ServiceDeps) *Service {
	if deps.Calc == nil {
		deps.Calc = service.NewSpreadCalculator()
	}
	if deps.Projector == nil {
		deps.Projector = service.NewFundingProjector()
	}
	if deps.Profit == nil {
		deps.Profit = service.NewProfitability()
	}
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	return &Service{deps: deps, st: NewState()}
}

// Snapshot exposes the latest published data to passive readers.
func (s *Service) Snapshot() model.Snapshot {
	return s.st.Get()
}

// Run drives the poll cycle until ctx is cancelled. The current cycle is
// finished before returning; the sleep interval is re-read from the config
// store every iteration so cadence changes apply without restart.
func (s *Service) Run(ctx context.Context) error {
	var ticks <-chan port.Tick

	for {
		cfg := s.deps.Config.Get()
		symbols := s.runCycle(ctx, cfg)
		ticks = s.syncFeed(ctx, symbols, ticks)

		timer := time.NewTimer(time.Duration(cfg.App.IntervalSeconds) * time.Second)
		sleeping := true
		for sleeping {
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case t, ok := <-ticks:
				if !ok {
					ticks = nil
					continue
				}
				s.st.ApplyTick(t)
			case <-timer.C:
				sleeping = false
			}
		}
	}
}

// syncFeed keeps the live subscription covering the perpetual and the listed
// dated contracts, resubscribing when the symbol set changes. Returns the
// active tick channel; the previous subscription is cancelled on swap.
func (s *Service) syncFeed(ctx context.Context, symbols []string, cur <-chan port.Tick) <-chan port.Tick {
	if s.deps.Feed == nil || len(symbols) == 0 {
		return cur
	}
	key := strings.Join(symbols, ",")
	if key == s.feedKey {
		return cur
	}

	fctx, cancel := context.WithCancel(ctx)
	ch, err := s.deps.Feed.Subscribe(fctx, symbols)
	if err != nil {
		cancel()
		log.Warn().Err(err).Str("feed", s.deps.Feed.Name()).Msg("live feed unavailable, polling only")
		return cur
	}

	if s.feedCancel != nil {
		s.feedCancel()
	}
	s.feedCancel = cancel
	s.feedKey = key
	log.Info().Str("feed", s.deps.Feed.Name()).Strs("symbols", symbols).Msg("live feed subscribed")
	return ch
}

// runCycle fetches, computes, alerts and publishes one snapshot, returning the
// symbols it covered (perpetual first, then dated). Partial data skips only
// what depends on it; a missing perpetual ticker skips the cycle (nil return).
func (s *Service) runCycle(ctx context.Context, cfg config.Config) []string {
	cctx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	perpSymbol := cfg.Symbols.Perpetual

	contracts := s.deps.Gateway.ListDatedContracts(cctx, perpSymbol)
	if len(contracts) > cfg.Symbols.MaxContracts {
		contracts = contracts[:cfg.Symbols.MaxContracts]
	}

	// independent reads, fetched concurrently; all must land before computing
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		perp        *model.Ticker
		spot        *model.Ticker
		currentRate *model.FundingRecord
		futures     = make([]*model.Ticker, len(contracts))
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		perp = s.deps.Gateway.GetTicker(cctx, perpSymbol, port.KindPerpetual)
	}()
	go func() {
		defer wg.Done()
		spot = s.deps.Gateway.GetTicker(cctx, perpSymbol, port.KindSpot)
	}()
	go func() {
		defer wg.Done()
		currentRate = s.deps.Gateway.GetCurrentFundingRate(cctx, perpSymbol)
	}()
	for i, c := range contracts {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			t := s.deps.Gateway.GetTicker(cctx, symbol, port.KindDated)
			mu.Lock()
			futures[i] = t
			mu.Unlock()
		}(i, c.Symbol)
	}
	wg.Wait()

	if perp == nil {
		log.Warn().Str("symbol", perpSymbol).Msg("perpetual ticker unavailable, skipping cycle")
		return nil
	}

	spreads := s.deps.Calc.ComputeSpreads(perp, futures)

	var fundingRate float64
	if currentRate != nil {
		fundingRate = currentRate.FundingRate
	}
	var spotPrice float64
	if spot != nil {
		spotPrice = spot.LastPrice
	}

	now := time.Now()
	snap := model.Snapshot{
		Spreads:   make(map[string]model.SpreadResult, len(spreads)),
		Funding:   make(map[string]model.FundingProjection, len(spreads)),
		Returns:   make(map[string]model.ProfitabilityResult, len(spreads)),
		Timestamp: now.UnixMilli(),
		Perpetual: &model.PerpetualSummary{
			Symbol:            perpSymbol,
			MarkPrice:         perp.MarkPrice,
			LastPrice:         perp.LastPrice,
			SpotPrice:         spotPrice,
			CurrentFundingPct: fundingRate * 100,
			Timestamp:         perp.Timestamp,
		},
	}

	deliveryTimes := make(map[string]int64, len(contracts))
	for _, c := range contracts {
		deliveryTimes[c.Symbol] = c.DeliveryTime
	}

	// per-cycle cache: same window means same history
	historyByWindow := make(map[int][]model.FundingRecord)
	fetchHistory := func(days int) []model.FundingRecord {
		if h, ok := historyByWindow[days]; ok {
			return h
		}
		h := s.deps.Gateway.GetFundingHistory(cctx, perpSymbol, days)
		historyByWindow[days] = h
		return h
	}

	// average over the operator-configured lookback, published with the summary
	lookback := fetchHistory(cfg.Funding.HistoryDays)
	snap.Perpetual.AverageFundingPct = s.deps.Projector.AverageRate(lookback, fundingRate) * 100

	for _, sp := range spreads {
		snap.Spreads[sp.FuturesSymbol] = sp

		if currentRate != nil {
			if s.deps.Policy.MaybeSpreadAlert(cctx, sp, fundingRate, cfg.Alerts.SpreadThresholdPercent) {
				s.recordAlert(cctx, sp.FuturesSymbol, service.AlertKindSpread, sp.SpreadPercent, snap.Timestamp)
			}
		}

		deliveryMs, ok := deliveryTimes[sp.FuturesSymbol]
		if !ok || deliveryMs == 0 {
			continue
		}
		daysUntilExpiry := float64(deliveryMs-now.UnixMilli()) / msPerDay
		if daysUntilExpiry <= 0 {
			continue
		}

		window := service.HistoryWindowDays(daysUntilExpiry)
		history := fetchHistory(window)

		projection, ok := s.deps.Projector.Project(sp.FuturesSymbol, history, daysUntilExpiry, fundingRate, spotPrice)
		if !ok {
			continue
		}
		snap.Funding[sp.FuturesSymbol] = projection

		netPct := s.deps.Profit.NetProfitPercent(sp.SpreadPercent, projection.CumulativeFundingPct, service.TotalTradingFees)
		result, ok := s.deps.Profit.ReturnOnCapital(
			sp.FuturesSymbol,
			cfg.Capital.CapitalUSDT,
			cfg.Capital.Leverage,
			perp.MarkPrice,
			netPct,
			daysUntilExpiry,
		)
		if !ok {
			continue
		}
		result.NetProfitStandard = s.deps.Profit.NetProfitStandard(sp.SpreadPercent, daysUntilExpiry)
		snap.Returns[sp.FuturesSymbol] = result

		if s.deps.Policy.MaybeReturnAlert(cctx, result, cfg.Alerts.ReturnOnCapitalThreshold, daysUntilExpiry, cfg.Capital.CapitalUSDT, cfg.Capital.Leverage) {
			s.recordAlert(cctx, result.Symbol, service.AlertKindReturn, result.ReturnOnCapitalPct, snap.Timestamp)
		}
	}

	s.st.Set(snap)
	s.publish(cctx, snap)

	log.Debug().
		Str("symbol", perpSymbol).
		Int("contracts", len(contracts)).
		Int("spreads", len(snap.Spreads)).
		Int("returns", len(snap.Returns)).
		Msg("cycle complete")

	symbols := make([]string, 0, len(contracts)+1)
	symbols = append(symbols, perpSymbol)
	for _, c := range contracts {
		symbols = append(symbols, c.Symbol)
	}
	return symbols
}

func (s *Service) publish(ctx context.Context, snap model.Snapshot) {
	for symbol, sp := range snap.Spreads {
		if err := s.deps.Repo.UpsertLatestSpread(ctx, symbol, sp.Spread, sp.SpreadPercent, sp.ComputedAt); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("spread persist failed")
		}
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Msg("snapshot marshal failed")
		return
	}
	if err := s.deps.Repo.InsertSnapshot(ctx, snap.Timestamp, string(payload)); err != nil {
		log.Warn().Err(err).Msg("snapshot persist failed")
	}
}

func (s *Service) recordAlert(ctx context.Context, symbol, kind string, value float64, ts int64) {
	if err := s.deps.Repo.InsertAlert(ctx, ts, symbol, kind, value, ""); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("kind", kind).Msg("alert persist failed")
	}
}
