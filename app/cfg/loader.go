package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./dropcomb.db" description:"Path to the SQLite database file"`

	// Pipeline configuration
	SourcesDir      string  `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	WorkerCount     int     `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of background workers for task processing"`
	CrawlInterval   int     `long:"crawl-interval" env:"CRAWL_INTERVAL" default:"30" description:"Crawl interval in minutes"`
	ScoreThreshold  float64 `long:"score-threshold" env:"SCORE_THRESHOLD" default:"7.0" description:"Minimum oracle score for a candidate to be approved"`
	MaxScoreRetries int     `long:"max-score-retries" env:"MAX_SCORE_RETRIES" default:"3" description:"Scoring attempts per fingerprint before a candidate is rejected"`
	OracleModel     string  `long:"oracle-model" env:"ORACLE_MODEL" description:"Scoring oracle model name (provider default when empty)"`
	OracleTimeout   int     `long:"oracle-timeout" env:"ORACLE_TIMEOUT" default:"30" description:"Scoring oracle call timeout in seconds"`

	// Notification configuration
	DispatchTimes    string `long:"dispatch-times" env:"DISPATCH_TIMES" default:"10:00,20:00" description:"Daily notification dispatch times (local, comma-separated HH:MM)"`
	NotifyWebhookURL string `long:"notify-webhook-url" env:"NOTIFY_WEBHOOK_URL" description:"Webhook endpoint for notification batches (log-only when empty)"`
	NotifyBatchLimit int    `long:"notify-batch-limit" env:"NOTIFY_BATCH_LIMIT" default:"10" description:"Maximum records per notification batch"`

	// Cache configuration
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the shared fingerprint cache (in-memory when empty)"`

	// HTTP configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"dropcomb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for dispatch windows (e.g., UTC, Asia/Singapore)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		SourcesDir:       raw.SourcesDir,
		WorkerCount:      raw.WorkerCount,
		CrawlInterval:    raw.CrawlInterval,
		ScoreThreshold:   raw.ScoreThreshold,
		MaxScoreRetries:  raw.MaxScoreRetries,
		OracleModel:      raw.OracleModel,
		OracleTimeout:    raw.OracleTimeout,
		DispatchTimes:    raw.DispatchTimes,
		NotifyWebhookURL: raw.NotifyWebhookURL,
		NotifyBatchLimit: raw.NotifyBatchLimit,
		RedisAddr:        raw.RedisAddr,
		Port:             raw.Port,
		APIAccessKey:     raw.APIAccessKey,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
