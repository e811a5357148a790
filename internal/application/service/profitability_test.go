package service

import (
	"math"
	"testing"
)

func TestNetProfitPercent(t *testing.T) {
	p := NewProfitability()

	got := p.NetProfitPercent(0.8, 2.0, TotalTradingFees)
	want := 2.0 - 0.8 - 0.1160
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNetProfitStandard(t *testing.T) {
	p := NewProfitability()

	// 0.0001 * 10 * 3 * 100 = 0.3% standard cumulative funding
	got := p.NetProfitStandard(0.1, 10.0)
	want := 0.3 - 0.1 - 0.1160
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReturnOnCapitalReference(t *testing.T) {
	p := NewProfitability()

	// 50k capital at 20x on a 2500 mark: 200 contracts per side, 500k position;
	// 1% over 30 days annualizes to 121.67%
	r, ok := p.ReturnOnCapital("ETHUSDT-26DEC25", 50000.0, 20.0, 2500.0, 1.0, 30.0)
	if !ok {
		t.Fatal("expected ok")
	}

	if r.ContractsCount != 200 {
		t.Errorf("expected 200 contracts, got %d", r.ContractsCount)
	}
	if r.PositionSize != 500000.0 {
		t.Errorf("expected position 500000, got %v", r.PositionSize)
	}
	if r.NetProfitQuote != 5000.0 {
		t.Errorf("expected net profit 5000, got %v", r.NetProfitQuote)
	}
	if math.Abs(r.ReturnOnCapitalPct-121.67) > 0.01 {
		t.Errorf("expected return on capital 121.67, got %v", r.ReturnOnCapitalPct)
	}
}

func TestReturnOnCapitalFloorsContracts(t *testing.T) {
	p := NewProfitability()

	// 50000/2/(2600/20) = 192.3 -> 192 whole contracts
	r, ok := p.ReturnOnCapital("ETHUSDT-26DEC25", 50000.0, 20.0, 2600.0, 1.0, 30.0)
	if !ok {
		t.Fatal("expected ok")
	}
	if r.ContractsCount != 192 {
		t.Errorf("expected 192 contracts, got %d", r.ContractsCount)
	}
}

func TestReturnOnCapitalGuards(t *testing.T) {
	p := NewProfitability()

	cases := []struct {
		name                          string
		capital, leverage, mark, days float64
	}{
		{"zero capital", 0, 20, 2500, 30},
		{"zero leverage", 50000, 0, 2500, 30},
		{"zero mark", 50000, 20, 0, 30},
		{"expired", 50000, 20, 2500, 0},
	}
	for _, c := range cases {
		if _, ok := p.ReturnOnCapital("X", c.capital, c.leverage, c.mark, 1.0, c.days); ok {
			t.Errorf("%s: expected ok=false", c.name)
		}
	}
}

func TestReturnOnCapitalNegativeProfit(t *testing.T) {
	p := NewProfitability()

	r, ok := p.ReturnOnCapital("ETHUSDT-26DEC25", 50000.0, 20.0, 2500.0, -0.5, 30.0)
	if !ok {
		t.Fatal("expected ok")
	}
	if r.NetProfitQuote >= 0 || r.ReturnOnCapitalPct >= 0 {
		t.Errorf("expected negative profit, got %+v", r)
	}
}
