package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxHeadingDepth is used when no depth limit is configured.
const DefaultMaxHeadingDepth = 4

type Config struct {
	Port string

	// Auth
	APIKey string

	// Outline
	MaxHeadingDepth int
	// Optional YAML file watched for runtime changes.
	ConfigFile string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Open documents
	MaxDocuments int
	DocumentTTL  time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Build latency window
	StatsWindow time.Duration

	// Webhook publishing
	WebhookURL    string
	WebhookAPIKey string

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("OUTLINE_API_KEY"),

		MaxHeadingDepth: envInt("MAX_HEADING_DEPTH", DefaultMaxHeadingDepth),
		ConfigFile:      os.Getenv("OUTLINE_CONFIG_FILE"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 256),

		MaxDocuments: envInt("MAX_DOCUMENTS", 1000),
		DocumentTTL:  envDuration("DOCUMENT_TTL", 2*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		WebhookURL:    os.Getenv("OUTLINE_WEBHOOK_URL"),
		WebhookAPIKey: os.Getenv("OUTLINE_WEBHOOK_API_KEY"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.MaxHeadingDepth <= 0 {
		c.MaxHeadingDepth = DefaultMaxHeadingDepth
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 256
	}
	if c.MaxDocuments <= 0 {
		c.MaxDocuments = 1000
	}
	if c.DocumentTTL <= 0 {
		c.DocumentTTL = 2 * time.Hour
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = 1 * time.Hour
	}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OUTLINE_API_KEY is required")
	}
	if c.WebhookURL != "" && c.WebhookAPIKey == "" {
		return fmt.Errorf("OUTLINE_WEBHOOK_API_KEY is required when OUTLINE_WEBHOOK_URL is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
