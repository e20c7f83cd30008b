package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/xcourier/internal/api"
	"github.com/iconidentify/xcourier/internal/api/handler"
	"github.com/iconidentify/xcourier/internal/config"
	"github.com/iconidentify/xcourier/internal/dispatcher"
	"github.com/iconidentify/xcourier/internal/downloader"
	"github.com/iconidentify/xcourier/internal/pipeline"
	"github.com/iconidentify/xcourier/internal/repository"
	"github.com/iconidentify/xcourier/internal/resolver"
	"github.com/iconidentify/xcourier/internal/scraper"
	"github.com/iconidentify/xcourier/internal/stats"
	"github.com/iconidentify/xcourier/internal/telegram"
	"github.com/iconidentify/xcourier/internal/worker"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("xcourier %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting xcourier",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure working directories exist
	if cfg.Delivery.TempDir != "" {
		if err := os.MkdirAll(cfg.Delivery.TempDir, 0755); err != nil {
			logger.Error("failed to create temp directory", "error", err)
			os.Exit(1)
		}
	}
	if dir := filepath.Dir(cfg.Stats.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create data directory", "error", err)
			os.Exit(1)
		}
	}

	// Open the stats store
	store, err := stats.NewStore(cfg.Stats, logger)
	if err != nil {
		logger.Error("failed to open stats store", "error", err)
		os.Exit(1)
	}

	// Connect to Telegram
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}
	logger.Info("authorized on telegram", "username", botAPI.Self.UserName)

	// Initialize dependencies
	res := resolver.NewResolver(cfg.Resolver, logger)
	scrapeClient := scraper.NewClient(cfg.Scraper)
	dl := downloader.NewHTTPDownloader(cfg.Delivery)
	dl.SetLogger(logger)

	sink := telegram.NewSink(botAPI, logger)
	disp := dispatcher.NewDispatcher(sink, dl, store, cfg.Delivery, logger)
	pipe := pipeline.NewPipeline(res, scrapeClient, disp, sink, store, logger)

	queue := repository.NewInMemoryMessageQueue()
	reporter := telegram.NewReporter(botAPI, cfg.Telegram.DeveloperChatID, logger)

	// Initialize worker pool
	pool := worker.NewPool(
		worker.Config{
			Workers:      cfg.Worker.Count,
			PollInterval: cfg.Worker.PollInterval,
		},
		queue,
		pipe,
		reporter,
		logger,
	)

	// Start worker pool
	pool.Start()

	// Start update consumption
	bot := telegram.NewBot(cfg.Telegram, botAPI, queue, store, logger)
	botCtx, cancelBot := context.WithCancel(context.Background())
	go bot.Run(botCtx)

	// Setup ops HTTP server
	healthHandler := handler.NewHealthHandler(queue, store, cfg.Delivery.TempDir)
	router := api.NewRouter(healthHandler, cfg.Server.APIKey)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Stop taking new updates
	bot.Stop()
	cancelBot()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight jobs to complete)
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	if err := store.Close(); err != nil {
		logger.Error("stats store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
