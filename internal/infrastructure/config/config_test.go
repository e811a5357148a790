package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.IntervalSeconds != 5 {
		t.Errorf("expected default interval 5, got %d", cfg.App.IntervalSeconds)
	}
	if cfg.Symbols.Perpetual != "ETHUSDT" {
		t.Errorf("expected default symbol ETHUSDT, got %q", cfg.Symbols.Perpetual)
	}
	if cfg.Alerts.SpreadThresholdPercent != 0.5 {
		t.Errorf("expected default threshold 0.5, got %v", cfg.Alerts.SpreadThresholdPercent)
	}
	if cfg.Alerts.CooldownSeconds != 300 {
		t.Errorf("expected default cooldown 300, got %d", cfg.Alerts.CooldownSeconds)
	}
	if cfg.Capital.CapitalUSDT != 50000 || cfg.Capital.Leverage != 20 {
		t.Errorf("unexpected capital defaults: %+v", cfg.Capital)
	}
	if cfg.Exchange.Bybit.RestURL != "https://api.bybit.com" {
		t.Errorf("unexpected rest url %q", cfg.Exchange.Bybit.RestURL)
	}
}

func TestLoadNormalizesSymbol(t *testing.T) {
	path := writeTempConfig(t, `
[symbols]
perpetual = " ethusdt "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Symbols.Perpetual != "ETHUSDT" {
		t.Errorf("expected normalized symbol, got %q", cfg.Symbols.Perpetual)
	}
}

func TestLoadKeepsExplicitZeroThreshold(t *testing.T) {
	path := writeTempConfig(t, `
[alerts]
spread_threshold_percent = 0.0
return_on_capital_threshold = 0.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Alerts.SpreadThresholdPercent != 0 {
		t.Errorf("explicit 0.0 must survive defaulting, got %v", cfg.Alerts.SpreadThresholdPercent)
	}
	if cfg.Alerts.ReturnOnCapitalThreshold != 0 {
		t.Errorf("explicit 0.0 must survive defaulting, got %v", cfg.Alerts.ReturnOnCapitalThreshold)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"threshold above 100", "[alerts]\nspread_threshold_percent = 150.0\n"},
		{"negative threshold", "[alerts]\nspread_threshold_percent = -1.0\n"},
		{"history too long", "[funding]\nhistory_days = 400\n"},
		{"interval too long", "[app]\ninterval_seconds = 4000\n"},
		{"telegram enabled without token", "[telegram]\nenabled = true\n"},
		{"postgres enabled without dsn", "[storage.postgres]\nenabled = true\n"},
	}
	for _, c := range cases {
		path := writeTempConfig(t, c.toml)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestStoreUpdate(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store := NewStore(cfg)

	threshold := 1.5
	updated, err := store.Update(Patch{SpreadThresholdPercent: &threshold})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Alerts.SpreadThresholdPercent != 1.5 {
		t.Errorf("expected 1.5, got %v", updated.Alerts.SpreadThresholdPercent)
	}
	if store.Get().Alerts.SpreadThresholdPercent != 1.5 {
		t.Error("expected store to hold the new value")
	}
}

func TestStoreUpdateRejectedKeepsPrevious(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store := NewStore(cfg)

	bad := -5.0
	if _, err := store.Update(Patch{SpreadThresholdPercent: &bad}); err == nil {
		t.Fatal("expected rejection")
	}
	if got := store.Get().Alerts.SpreadThresholdPercent; got != 0.5 {
		t.Errorf("expected previous value 0.5 after rejected update, got %v", got)
	}

	badCapital := 0.0
	if _, err := store.Update(Patch{CapitalUSDT: &badCapital}); err == nil {
		t.Fatal("expected rejection of non-positive capital")
	}
}

func TestStoreUpdateMultipleFields(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store := NewStore(cfg)

	interval := 30
	symbol := "btcusdt"
	updated, err := store.Update(Patch{IntervalSeconds: &interval, PerpetualSymbol: &symbol})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.App.IntervalSeconds != 30 {
		t.Errorf("expected interval 30, got %d", updated.App.IntervalSeconds)
	}
	if updated.Symbols.Perpetual != "BTCUSDT" {
		t.Errorf("expected BTCUSDT, got %q", updated.Symbols.Perpetual)
	}
}

func TestStoreReplaceRejectsInvalid(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store := NewStore(cfg)

	var bad Config
	bad.Symbols.Perpetual = ""
	if err := store.Replace(&bad); err == nil {
		t.Fatal("expected invalid replacement to be rejected")
	}
	if store.Get().Symbols.Perpetual != "ETHUSDT" {
		t.Error("expected previous configuration to survive")
	}
}
