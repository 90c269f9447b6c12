package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SmartBid/internal/alert"
	"SmartBid/internal/collector"
	"SmartBid/internal/config"
	"SmartBid/internal/executor"
	"SmartBid/internal/history"
	"SmartBid/internal/notifier"
	"SmartBid/internal/recorder"
	"SmartBid/internal/scheduler"
	"SmartBid/internal/strategy"
	"SmartBid/internal/wb"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SmartBid starting...")

	once := flag.Bool("once", false, "run a single optimization pass and exit")
	interval := flag.Int("interval", 3600, "seconds between passes in interval mode")
	flag.Parse()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init advert API client and fetcher
	client := wb.NewClient(cfg.API.BaseURL, cfg.API.Token, wb.Options{
		Timeout:       cfg.APITimeout(),
		RatePerSecond: cfg.API.RatePerSecond,
		RateWaitCap:   cfg.RateWaitCap(),
	})
	var fetcher collector.Fetcher
	if cfg.API.Token != "" {
		fetcher = collector.NewWBFetcher(client)
	} else {
		log.Println("[WARN] no API token configured, using mock fetcher")
		fetcher = &collector.MockFetcher{}
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init strategy store and history tracker
	store := strategy.NewStore(cfg.Strategies.File)
	tracker, err := history.NewTracker(cfg.History.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init history tracker: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init alerting
	var notify alert.Notifier = alert.NoopNotifier{}
	if cfg.Telegram.BotToken != "" {
		notify = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
	alerts := alert.NewManager(alert.Thresholds{
		BidJumpPercent:      cfg.Alerts.BidJumpPercent,
		NoImpressionsWindow: cfg.NoImpressionsWindow(),
	}, rec, notify)

	exec := executor.New(client, cfg.Executor.MaxAttempts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(store, fetcher, tracker, exec, rec, alerts, notify)

	if *once {
		// os.Exit skips deferred calls, so the recorder is closed inside
		// the helper before the exit code is raised.
		os.Exit(runSinglePass(ctx, sched, rec))
	}

	if err := sched.StartInterval(ctx, time.Duration(*interval)*time.Second); err != nil {
		log.Fatalf("[FATAL] start scheduler: %v", err)
	}
	defer sched.Stop()

	log.Println("[INFO] SmartBid is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	if err := rec.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
	log.Println("[INFO] SmartBid stopped")
}

// runSinglePass runs one optimization pass, closes the recorder, and
// returns the process exit code: non-zero when the pass errored or any
// campaign failed.
func runSinglePass(ctx context.Context, sched *scheduler.Scheduler, rec recorder.Recorder) int {
	sum, err := sched.RunOnce(ctx)
	code := 0
	if err != nil {
		log.Printf("[ERROR] optimization pass: %v", err)
		code = 1
	}
	if sum.Failed > 0 {
		code = 1
	}
	if err := rec.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
	return code
}
