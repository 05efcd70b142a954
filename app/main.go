package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropcomb/dropcomb/app/airdrop"
	"github.com/dropcomb/dropcomb/app/api"
	"github.com/dropcomb/dropcomb/app/cache"
	"github.com/dropcomb/dropcomb/app/cfg"
	"github.com/dropcomb/dropcomb/app/database"
	"github.com/dropcomb/dropcomb/app/notify"
	"github.com/dropcomb/dropcomb/app/oracle"
	"github.com/dropcomb/dropcomb/app/source"
	"github.com/dropcomb/dropcomb/app/tasks"
)

func main() {
	// Optional .env file for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Dropcomb", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	repo := database.NewAirdropRepository(db)

	configCache := source.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	httpClient := &http.Client{Timeout: 60 * time.Second}

	adapters := buildAdapters(configCache, httpClient, appCfg.UserAgent)
	if len(adapters) == 0 {
		slog.Warn("No enabled sources configured, crawl cycles will be empty")
	}

	fpCache := buildFingerprintCache(appCfg.RedisAddr)

	scoringOracle := oracle.NewFromEnv(appCfg.OracleModel)
	scorer := airdrop.NewScorer(scoringOracle, appCfg.ScoreThreshold, appCfg.MaxScoreRetries,
		time.Duration(appCfg.OracleTimeout)*time.Second)

	channel := buildChannel(appCfg.NotifyWebhookURL, httpClient, appCfg.UserAgent)
	notifier := notify.NewNotifier(repo, channel, appCfg.NotifyBatchLimit)

	schedule, err := notify.ParseSchedule(appCfg.DispatchTimes, time.Local)
	if err != nil {
		slog.Error("Invalid dispatch times", "value", appCfg.DispatchTimes, "error", err)
		os.Exit(1)
	}

	scheduler := tasks.NewScheduler(adapters, repo, fpCache, scorer, notifier, schedule)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "workers", appCfg.WorkerCount, "crawl_interval_minutes", appCfg.CrawlInterval, "dispatch_times", appCfg.DispatchTimes, "timezone", time.Local.String())

	apiHandler := api.NewHandler(repo, configCache, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// buildAdapters constructs one adapter per enabled source config, in stable
// name order so crawl logs read the same across runs.
func buildAdapters(configCache *source.ConfigCache, httpClient *http.Client, userAgent string) []source.Adapter {
	enabled := configCache.GetEnabledConfigs()

	names := make([]string, 0, len(enabled))
	for name := range enabled {
		names = append(names, name)
	}
	sort.Strings(names)

	adapters := make([]source.Adapter, 0, len(names))
	for _, name := range names {
		adapter, err := source.NewAdapter(enabled[name], httpClient, userAgent)
		if err != nil {
			slog.Warn("Skipping source", "source", name, "error", err)
			continue
		}
		adapters = append(adapters, adapter)
		slog.Info("Source registered", "source", adapter.Name(), "platform", adapter.Platform())
	}
	return adapters
}

func buildFingerprintCache(redisAddr string) cache.FingerprintCache {
	if redisAddr == "" {
		slog.Info("Using in-memory fingerprint cache")
		return cache.NewMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(redisAddr, 30*24*time.Hour)
	if err != nil {
		slog.Warn("Redis unavailable, falling back to in-memory fingerprint cache", "addr", redisAddr, "error", err)
		return cache.NewMemoryCache()
	}
	slog.Info("Using Redis fingerprint cache", "addr", redisAddr)
	return redisCache
}

func buildChannel(webhookURL string, httpClient *http.Client, userAgent string) notify.Channel {
	if webhookURL == "" {
		slog.Info("No webhook configured, notifications will be logged only")
		return notify.NewLogChannel()
	}
	slog.Info("Webhook notification channel configured")
	return notify.NewWebhookChannel(webhookURL, httpClient, userAgent)
}
