package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"MASentinel/internal/collector"
	"MASentinel/internal/config"
	"MASentinel/internal/logging"
	"MASentinel/internal/metrics"
	"MASentinel/internal/notifier"
	"MASentinel/internal/recorder"
	"MASentinel/internal/scheduler"
	"MASentinel/internal/tracker"
	"MASentinel/internal/universe"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("config", cfgPath).Msg("MASentinel starting")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch {
	case cfg.DataSource.CSVDir != "":
		fetcher = collector.NewCSVFetcher(cfg.DataSource.CSVDir)
	case cfg.DataSource.BaseURL != "":
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher)

	dir := universe.NewDirectory(&universe.YAMLSource{Path: cfg.Universe.File},
		time.Duration(cfg.Universe.CacheTTLMinutes)*time.Minute)

	tm, err := tracker.NewManager(cfg.Tracker.StateFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init alert tracker")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.NotificationsEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, col, dir, tm, sender, rec, cfg.Params(), cfg.Strategy.LookbackDays, cfg.Watchlist)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning watchlist now")
		go sched.RunScanNow()
	}

	log.Info().Msg("MASentinel is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
}
