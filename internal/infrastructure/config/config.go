package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		IntervalSeconds int `toml:"interval_seconds"`
	} `toml:"app"`

	Symbols struct {
		Perpetual    string `toml:"perpetual"`
		MaxContracts int    `toml:"max_contracts"`
	} `toml:"symbols"`

	Alerts struct {
		SpreadThresholdPercent   float64 `toml:"spread_threshold_percent"`
		ReturnOnCapitalThreshold float64 `toml:"return_on_capital_threshold"`
		CooldownSeconds          int     `toml:"cooldown_seconds"`
	} `toml:"alerts"`

	Funding struct {
		HistoryDays int `toml:"history_days"`
	} `toml:"funding"`

	Capital struct {
		CapitalUSDT float64 `toml:"capital_usdt"`
		Leverage    float64 `toml:"leverage"`
	} `toml:"capital"`

	Exchange struct {
		Bybit struct {
			RestURL   string `toml:"rest_url"`
			WsURL     string `toml:"ws_url"`
			WsEnabled bool   `toml:"ws_enabled"`
		} `toml:"bybit"`
	} `toml:"exchange"`

	Telegram struct {
		Enabled  bool   `toml:"enabled"`
		BotToken string `toml:"bot_token"`
		ChatID   string `toml:"chat_id"`
	} `toml:"telegram"`

	Storage struct {
		Enabled bool `toml:"enabled"`

		Redis struct {
			Enabled      bool   `toml:"enabled"`
			Addr         string `toml:"addr"`
			Password     string `toml:"password"`
			DB           int    `toml:"db"`
			Prefix       string `toml:"prefix"`
			TTLSeconds   int    `toml:"ttl_seconds"`
			AlertStream  string `toml:"alert_stream"`
			SnapshotChan string `toml:"snapshot_channel"`
		} `toml:"redis"`

		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`
	} `toml:"storage"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	applyDefaults(&cfg, md)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.App.IntervalSeconds <= 0 {
		cfg.App.IntervalSeconds = 5
	}
	if cfg.Symbols.Perpetual == "" {
		cfg.Symbols.Perpetual = "ETHUSDT"
	}
	if cfg.Symbols.MaxContracts <= 0 {
		cfg.Symbols.MaxContracts = 8
	}
	// zero is a legal explicit threshold; default only when the key is absent
	if !md.IsDefined("alerts", "spread_threshold_percent") {
		cfg.Alerts.SpreadThresholdPercent = 0.5
	}
	if !md.IsDefined("alerts", "return_on_capital_threshold") {
		cfg.Alerts.ReturnOnCapitalThreshold = 50.0
	}
	if cfg.Alerts.CooldownSeconds <= 0 {
		cfg.Alerts.CooldownSeconds = 300
	}
	if cfg.Funding.HistoryDays <= 0 {
		cfg.Funding.HistoryDays = 7
	}
	if cfg.Capital.CapitalUSDT <= 0 {
		cfg.Capital.CapitalUSDT = 50000
	}
	if cfg.Capital.Leverage <= 0 {
		cfg.Capital.Leverage = 20
	}
	if cfg.Exchange.Bybit.RestURL == "" {
		cfg.Exchange.Bybit.RestURL = "https://api.bybit.com"
	}
	if cfg.Exchange.Bybit.WsURL == "" {
		cfg.Exchange.Bybit.WsURL = "wss://stream.bybit.com/v5/public/linear"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "basiswatch"
	}
}

func validate(cfg *Config) error {
	cfg.Symbols.Perpetual = strings.ToUpper(strings.TrimSpace(cfg.Symbols.Perpetual))
	if cfg.Symbols.Perpetual == "" {
		return errors.New("symbols.perpetual is empty")
	}
	if cfg.Alerts.SpreadThresholdPercent < 0 || cfg.Alerts.SpreadThresholdPercent > 100 {
		return fmt.Errorf("alerts.spread_threshold_percent must be between 0 and 100, got %v", cfg.Alerts.SpreadThresholdPercent)
	}
	if cfg.Alerts.ReturnOnCapitalThreshold < 0 {
		return fmt.Errorf("alerts.return_on_capital_threshold must not be negative, got %v", cfg.Alerts.ReturnOnCapitalThreshold)
	}
	if cfg.Funding.HistoryDays < 1 || cfg.Funding.HistoryDays > 365 {
		return fmt.Errorf("funding.history_days must be between 1 and 365, got %d", cfg.Funding.HistoryDays)
	}
	if cfg.App.IntervalSeconds < 1 || cfg.App.IntervalSeconds > 3600 {
		return fmt.Errorf("app.interval_seconds must be between 1 and 3600, got %d", cfg.App.IntervalSeconds)
	}
	if cfg.Telegram.Enabled && strings.TrimSpace(cfg.Telegram.BotToken) == "" {
		return errors.New("telegram.bot_token empty but enabled")
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	if cfg.Storage.SQLite.Enabled && strings.TrimSpace(cfg.Storage.SQLite.Path) == "" {
		return errors.New("storage.sqlite.path empty but enabled")
	}
	return nil
}
