package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Pipeline configuration
	SourcesDir      string
	WorkerCount     int
	CrawlInterval   int
	ScoreThreshold  float64
	MaxScoreRetries int
	OracleModel     string
	OracleTimeout   int

	// Notification configuration
	DispatchTimes    string
	NotifyWebhookURL string
	NotifyBatchLimit int

	// Cache configuration
	RedisAddr string

	// HTTP configuration
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
