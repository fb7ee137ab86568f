package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/vitos/crypto_gap_board/internal/config"
	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/infrastructure/backend"
	"github.com/vitos/crypto_gap_board/internal/infrastructure/logger"
	"github.com/vitos/crypto_gap_board/internal/infrastructure/notify"
	"github.com/vitos/crypto_gap_board/internal/infrastructure/storage"
	"github.com/vitos/crypto_gap_board/internal/render"
	"github.com/vitos/crypto_gap_board/internal/ui"
	"github.com/vitos/crypto_gap_board/internal/usecase"
	"github.com/vitos/crypto_gap_board/internal/version"
	"github.com/vitos/crypto_gap_board/internal/web"
	"go.uber.org/zap"
)

const defaultTUILogFile = "gapboard.log"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	tui := flag.Bool("tui", false, "draw the board in the terminal as well")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger. The terminal board owns stdout, so logs go to a file.
	var log *zap.Logger
	switch {
	case cfg.Logging.File != "":
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	case *tui:
		log, err = logger.NewFileLogger(defaultTUILogFile, cfg.Logging.Level)
	default:
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting gap board", append(version.Fields(),
		zap.String("config", *configPath),
		zap.String("backend", cfg.Backend.BaseURL))...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-stop
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	// 3. Init Backend Client
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)

	// 4. Render Targets
	hub := web.NewHub(log)
	targets := render.Multi{hub}
	var terminal *ui.TerminalBoard
	if *tui {
		terminal, err = ui.NewTerminalBoard(cfg.Display.Flash)
		if err != nil {
			log.Fatal("Failed to init terminal board", zap.Error(err))
		}
		targets = append(targets, terminal)
	}
	scheduler := render.NewScheduler(targets, cfg.Display.FrameInterval, log)
	formatter := render.NewFormatter(cfg.Display.Locale, cfg.Display.LocalRate)

	// 5. Gap Journal
	var journal *storage.SQLiteJournal
	var recorder *usecase.GapRecorder
	if cfg.Journal.Enabled {
		dsn := cfg.Journal.DSN
		if dsn == "" {
			dsn = storage.DefaultJournalDSN
		}
		journal, err = storage.NewSQLiteJournal(dsn)
		if err != nil {
			log.Fatal("Failed to init gap journal", zap.Error(err))
		}
		defer journal.Close()
		recorder = usecase.NewGapRecorder(journal, log)
	}

	// 6. Alerts
	var alerter *usecase.GapAlerter
	if cfg.Alerts.Enabled {
		telegram := notify.NewTelegram(notify.TelegramConfig{
			BotToken: cfg.Alerts.Telegram.BotToken,
			ChatID:   cfg.Alerts.Telegram.ChatID,
		}, log)
		alerter = usecase.NewGapAlerter(usecase.AlertConfig{
			EntryThreshold: cfg.Alerts.EntryThreshold,
			ExitThreshold:  cfg.Alerts.ExitThreshold,
			Cooldown:       cfg.Alerts.Cooldown,
			QueueSize:      cfg.Alerts.QueueSize,
			Location:       cfg.Display.Location(),
		}, telegram, formatter, log)
		alerter.Start(ctx)
		defer alerter.Stop()
	}

	var observers []usecase.GapObserver
	if recorder != nil {
		observers = append(observers, recorder)
	}
	if alerter != nil {
		observers = append(observers, alerter)
	}

	// 7. Boards and Feeds
	retry := usecase.RetryPolicy{MaxRetries: cfg.Retry.MaxRetries, BaseDelay: cfg.Retry.BaseDelay}
	newFeed := func(name string, fc config.FeedConfig, hooks usecase.FeedHooks) *usecase.Feed {
		return usecase.NewFeed(usecase.FeedConfig{
			Name:        name,
			Interval:    fc.Interval,
			Retry:       retry,
			InitRecheck: cfg.InitRecheck,
		}, hooks, log)
	}
	gate := func(fc config.FeedConfig) usecase.StatusChecker {
		if fc.Gated() {
			return client
		}
		return nil
	}

	var feeds []*usecase.Feed
	var gapSource usecase.GapSource

	// Observers follow the orderbook board, or the summary board when the
	// orderbook region is disabled.
	if cfg.Feeds.Orderbook.IsEnabled() {
		board := usecase.NewGapBoard(usecase.GapBoardConfig{
			Mode:      usecase.ModeOrderbook,
			Pairs:     cfg.Pairs,
			Formatter: formatter,
			Flash:     cfg.Display.Flash,
		}, client, scheduler, log, observers...)
		feeds = append(feeds, newFeed("orderbook", cfg.Feeds.Orderbook, board.Hooks(gate(cfg.Feeds.Orderbook))))
		gapSource = board
		observers = nil
	}
	if cfg.Feeds.Summary.IsEnabled() {
		board := usecase.NewGapBoard(usecase.GapBoardConfig{
			Mode:      usecase.ModeSummary,
			Pairs:     cfg.Pairs,
			Formatter: formatter,
		}, client, scheduler, log, observers...)
		feeds = append(feeds, newFeed("summary", cfg.Feeds.Summary, board.Hooks(gate(cfg.Feeds.Summary))))
		if gapSource == nil {
			gapSource = board
		}
	}
	if cfg.Feeds.Balances.IsEnabled() {
		board := usecase.NewBalanceBoard(client, formatter, scheduler)
		feeds = append(feeds, newFeed("balances", cfg.Feeds.Balances, board.Hooks()))
	}
	if cfg.Feeds.Prices.IsEnabled() {
		board := usecase.NewPriceBoard(client, formatter, scheduler, cfg.Prices.Watchlist, cfg.Prices.Reference, cfg.Prices.Comparison)
		feeds = append(feeds, newFeed("prices", cfg.Feeds.Prices, board.Hooks()))
	}
	if cfg.Feeds.Clock.IsEnabled() {
		board := usecase.NewClockBoard(client, scheduler, cfg.Display.Location(), log)
		feeds = append(feeds, newFeed("clock", cfg.Feeds.Clock, board.Hooks()))
	}

	go scheduler.Run(ctx)
	for _, f := range feeds {
		f.Start(ctx)
	}

	// 8. Scheduled Jobs
	jobs := cron.New(cron.WithLocation(cfg.Display.Location()))
	if alerter != nil && gapSource != nil {
		if _, err := jobs.AddFunc(cfg.Alerts.DigestSchedule, func() {
			if err := alerter.SendDigest(ctx, gapSource); err != nil {
				log.Error("Failed to send gap digest", zap.Error(err))
			}
		}); err != nil {
			log.Fatal("Failed to schedule digest", zap.Error(err))
		}
	}
	if recorder != nil {
		if _, err := jobs.AddFunc(cfg.Journal.PruneSchedule, func() {
			removed, err := recorder.Prune(ctx, cfg.Journal.Retention)
			if err != nil {
				log.Error("Failed to prune gap journal", zap.Error(err))
				return
			}
			log.Debug("Pruned gap journal", zap.Int64("removed", removed))
		}); err != nil {
			log.Fatal("Failed to schedule journal prune", zap.Error(err))
		}
	}
	jobs.Start()

	// 9. Start Server
	controls := make([]web.FeedControl, 0, len(feeds))
	for _, f := range feeds {
		controls = append(controls, f)
	}
	var gapJournal domain.GapJournal
	if journal != nil {
		gapJournal = journal
	}
	server := web.NewServer(cfg.Server.Port, hub, client, gapJournal, controls, cfg.Journal.HistoryLimit, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("Server failed", zap.Error(err))
			cancel()
		}
	}()

	if terminal != nil {
		go func() {
			if err := terminal.Run(ctx); err != nil {
				log.Error("Terminal board failed", zap.Error(err))
			}
			cancel()
		}()
	}

	// 10. Wait for Shutdown
	<-ctx.Done()
	log.Info("Shutting down...")

	<-jobs.Stop().Done()
	for _, f := range feeds {
		f.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
