package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basiswatch/internal/application/port"
	"basiswatch/internal/application/service"
	"basiswatch/internal/application/usecase/monitor"
	"basiswatch/internal/infrastructure/config"
	"basiswatch/internal/infrastructure/container"
	"basiswatch/internal/infrastructure/exchange/bybit"
	"basiswatch/internal/infrastructure/logger"
	"basiswatch/internal/infrastructure/notify"
	"basiswatch/internal/interfaces/console"

	"github.com/rs/zerolog/log"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := config.NewStore(cfg)

	c, err := container.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("container init failed")
	}
	defer func() { _ = c.Close() }()

	gateway := bybit.NewRestClient(cfg.Exchange.Bybit.RestURL)

	var notifier port.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	} else {
		log.Warn().Msg("telegram disabled by config, alerts go to stdout")
		notifier = console.NewSink()
	}

	policy := service.NewAlertPolicy(notifier, time.Duration(cfg.Alerts.CooldownSeconds)*time.Second)

	var feed port.PriceFeed
	if cfg.Exchange.Bybit.WsEnabled {
		feed = bybit.NewLinearTickerFeed(cfg.Exchange.Bybit.WsURL)
	}

	repo := c.Repo()
	if repo == nil {
		repo = monitor.NewNoopRepo()
	}

	svc := monitor.NewService(monitor.ServiceDeps{
		Gateway: gateway,
		Repo:    repo,
		Config:  store,
		Policy:  policy,
		Feed:    feed,
	})

	// hot reload: config file changes apply on the next cycle
	go config.Watch(ctx, *configPath, store, 5*time.Second)

	log.Info().
		Str("config", *configPath).
		Str("symbol", cfg.Symbols.Perpetual).
		Int("interval_seconds", cfg.App.IntervalSeconds).
		Float64("spread_threshold", cfg.Alerts.SpreadThresholdPercent).
		Msg("basiswatch started")

	if err := svc.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("monitor service exited")
	}
}
