// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/tipping.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // cutoffs must resolve on hosts without a zoneinfo database
)

// --------------------------------------------------------------------------
// Competition defaults
// --------------------------------------------------------------------------

const (
	// DefaultTimezone anchors every cutoff regardless of server locale.
	DefaultTimezone = "Australia/Sydney"

	// CompetitionName is shown in API metadata and generator prompts.
	CompetitionName = "NRL"
)

// --------------------------------------------------------------------------
// Table names, matching the store schema.
// --------------------------------------------------------------------------

const (
	UsersTable        = "users"
	FixturesTable     = "fixture_free"
	TipsTable         = "tips"
	ChatMessagesTable = "chat_messages"
	ReportsTable      = "tip_intelligence_reports"
	TipStatsTable     = "user_tip_stats"
)

// --------------------------------------------------------------------------
// Config is populated from environment variables.
// --------------------------------------------------------------------------

type Config struct {
	// Database. An empty DatabaseURL selects the SQLite store at SQLitePath.
	DatabaseURL    string
	SQLitePath     string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Gateway identity. Empty token disables the bearer check (local dev only).
	GatewayToken string

	// Report generator (OpenAI)
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	ReportSearchCount int
	ReportWorkers     int
	ReportQueueSize   int
	ReportTimeout     time.Duration

	// Competition
	Timezone        string
	TipperbotUserID int64

	// Fixture feed + scheduled jobs
	FixturesFeedURL     string
	FixtureSyncInterval time.Duration
	AutoAssignEnabled   bool

	// CSV export bucket (S3 compatible)
	ExportBucket          string
	ExportEndpoint        string
	ExportRegion          string
	ExportAccessKeyID     string
	ExportSecretAccessKey string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	// Hosted Postgres providers still hand out the legacy scheme.
	if strings.HasPrefix(dbURL, "postgres://") {
		dbURL = "postgresql://" + strings.TrimPrefix(dbURL, "postgres://")
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		SQLitePath:     envOr("SQLITE_PATH", "./instance/database.db"),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		GatewayToken: envOr("GATEWAY_TOKEN", ""),

		OpenAIAPIKey:      envOr("OPENAI_API_KEY", ""),
		OpenAIModel:       envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ReportSearchCount: envInt("REPORT_SEARCH_COUNT", 10),
		ReportWorkers:     envInt("REPORT_WORKERS", 1),
		ReportQueueSize:   envInt("REPORT_QUEUE_SIZE", 32),
		ReportTimeout:     envDuration("REPORT_TIMEOUT", 10*time.Minute),

		Timezone:        envOr("TIPPING_TIMEZONE", DefaultTimezone),
		TipperbotUserID: int64(envInt("TIPPERBOT_USER_ID", 16)),

		FixturesFeedURL:     envOr("FIXTURES_FEED_URL", ""),
		FixtureSyncInterval: envDuration("FIXTURE_SYNC_INTERVAL", time.Hour),
		AutoAssignEnabled:   envBool("AUTO_ASSIGN_ENABLED", false),

		ExportBucket:          envOr("EXPORT_BUCKET", ""),
		ExportEndpoint:        envOr("EXPORT_ENDPOINT", ""),
		ExportRegion:          envOr("EXPORT_REGION", "auto"),
		ExportAccessKeyID:     envOr("EXPORT_ACCESS_KEY_ID", ""),
		ExportSecretAccessKey: envOr("EXPORT_SECRET_ACCESS_KEY", ""),

		LogLevel: envOr("LOG_LEVEL", "info"),
		LogFile:  envOr("LOG_FILE", ""),
	}

	if cfg.ReportWorkers < 1 {
		return nil, fmt.Errorf("REPORT_WORKERS must be at least 1, got %d", cfg.ReportWorkers)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIPPING_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesPostgres reports whether a Postgres URL is configured.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// ReportsEnabled reports whether the remote report generator has credentials.
func (c *Config) ReportsEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// ExportUploadEnabled reports whether CSV exports can be pushed to a bucket.
func (c *Config) ExportUploadEnabled() bool {
	return c.ExportBucket != "" && c.ExportAccessKeyID != "" && c.ExportSecretAccessKey != ""
}

// Location returns the anchor timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
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

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
