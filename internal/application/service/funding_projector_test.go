package service

import (
	"math"
	"testing"

	"basiswatch/internal/domain/model"
)

func records(rate float64, n int) []model.FundingRecord {
	out := make([]model.FundingRecord, n)
	for i := range out {
		out[i] = model.FundingRecord{Symbol: "ETHUSDT", FundingRate: rate, Timestamp: int64(i)}
	}
	return out
}

func TestHistoryWindowDays(t *testing.T) {
	cases := []struct {
		days float64
		want int
	}{
		{12.9, 12},
		{0.5, 30},
		{-3, 30},
		{400, 365},
		{1.0, 1},
	}
	for _, c := range cases {
		if got := HistoryWindowDays(c.days); got != c.want {
			t.Errorf("HistoryWindowDays(%v) = %d, want %d", c.days, got, c.want)
		}
	}
}

func TestAverageRate(t *testing.T) {
	p := NewFundingProjector()

	history := []model.FundingRecord{
		{FundingRate: 0.0001},
		{FundingRate: 0.0003},
	}
	if got := p.AverageRate(history, 0.0005); got != 0.0002 {
		t.Errorf("expected average 0.0002, got %v", got)
	}
	if got := p.AverageRate(nil, 0.0005); got != 0.0005 {
		t.Errorf("expected current-rate fallback 0.0005, got %v", got)
	}
}

func TestProjectCompleteHistory(t *testing.T) {
	p := NewFundingProjector()

	// 10 days to expiry, full 10-day window at 3 payments/day
	history := records(0.0001, 30)
	proj, ok := p.Project("ETHUSDT-26DEC25", history, 10.0, 0.0005, 2500.0)
	if !ok {
		t.Fatal("expected ok")
	}

	// 0.0001 * 10 * 3 * 100 = 0.3%
	if math.Abs(proj.CumulativeFundingPct-0.3) > 1e-9 {
		t.Errorf("expected cumulative 0.3, got %v", proj.CumulativeFundingPct)
	}
	if !proj.HistoryComplete {
		t.Error("expected complete history")
	}
	if proj.HistoryDays != 10 {
		t.Errorf("expected history window 10, got %d", proj.HistoryDays)
	}
	if math.Abs(proj.StandardCumulativePct-0.3) > 1e-9 {
		t.Errorf("expected standard cumulative 0.3, got %v", proj.StandardCumulativePct)
	}
}

func TestProjectSparseHistory(t *testing.T) {
	p := NewFundingProjector()

	// 10 of 30 expected records: below the completeness bar, same scaling
	history := records(0.0002, 10)
	proj, ok := p.Project("ETHUSDT-26DEC25", history, 10.0, 0.0005, 2500.0)
	if !ok {
		t.Fatal("expected ok")
	}
	if proj.HistoryComplete {
		t.Error("expected incomplete history")
	}
	if math.Abs(proj.CumulativeFundingPct-0.6) > 1e-9 {
		t.Errorf("expected cumulative 0.6, got %v", proj.CumulativeFundingPct)
	}
}

func TestProjectEmptyHistoryUsesCurrentRate(t *testing.T) {
	p := NewFundingProjector()

	proj, ok := p.Project("ETHUSDT-26DEC25", nil, 10.0, 0.0005, 2500.0)
	if !ok {
		t.Fatal("expected ok")
	}
	// 0.0005 * 10 * 3 * 100 = 1.5%
	if math.Abs(proj.CumulativeFundingPct-1.5) > 1e-9 {
		t.Errorf("expected cumulative 1.5, got %v", proj.CumulativeFundingPct)
	}
	if proj.HistoryComplete {
		t.Error("empty history must not count as complete")
	}
}

func TestProjectExpired(t *testing.T) {
	p := NewFundingProjector()

	if _, ok := p.Project("ETHUSDT-26DEC25", records(0.0001, 3), 0, 0.0001, 2500.0); ok {
		t.Error("expected ok=false for zero days to expiry")
	}
	if _, ok := p.Project("ETHUSDT-26DEC25", records(0.0001, 3), -1.5, 0.0001, 2500.0); ok {
		t.Error("expected ok=false for negative days to expiry")
	}
}

func TestFairPrice(t *testing.T) {
	// F = S * (1 + 0.04 * 36.5/365) = S * 1.004
	got := FairPrice(2500.0, 36.5)
	if math.Abs(got-2510.0) > 1e-9 {
		t.Errorf("expected fair price 2510.0, got %v", got)
	}
	if FairPrice(0, 10) != 0 {
		t.Error("expected zero fair price for non-positive spot")
	}
}

func TestFairSpreadPercent(t *testing.T) {
	pct, ok := FairSpreadPercent(2525.0, 2500.0)
	if !ok || math.Abs(pct-1.0) > 1e-9 {
		t.Errorf("expected 1.0 ok, got %v %v", pct, ok)
	}
	if _, ok := FairSpreadPercent(2525.0, 0); ok {
		t.Error("expected ok=false for zero perpetual mark")
	}
}
