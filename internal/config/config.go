package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for configuration values.
const (
	DefaultProbabilityMethod = "poisson"
	DefaultDBPath            = "data/predictor.db"
	DefaultUpdateInterval    = 6 * time.Hour
	DefaultLogLevel          = "info"
	DefaultHTTPTimeout       = 10 * time.Second
	DefaultRequestsPerMinute = 30
	DefaultAlertCooldown     = 30 * time.Minute
	DefaultCleanupInterval   = 10 * time.Minute
	DefaultSPFLBaseURL       = "https://spfl.co.uk"
)

// SnapshotSeed seeds the synthetic fill around an applied stats document.
// It is fixed so a stored snapshot rebuilds identically in every process.
const SnapshotSeed uint64 = 1873

// Config holds all application configuration.
type Config struct {
	ProbabilityMethod string
	Seed              uint64
	HasSeed           bool // PREDICTOR_SEED was set
	DBPath            string
	CatalogPath       string // empty = embedded catalog
	LogLevel          string

	// Update settings
	StatsURL          string // empty = no remote checks
	SPFLBaseURL       string
	UpdateInterval    time.Duration
	HTTPTimeout       time.Duration
	RequestsPerMinute int
	AlertCooldown     time.Duration
}

// Load reads configuration from environment variables (and .env file if present).
func Load() Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := Config{
		ProbabilityMethod: DefaultProbabilityMethod,
		DBPath:            DefaultDBPath,
		CatalogPath:       os.Getenv("LEAGUE_CATALOG_PATH"),
		LogLevel:          DefaultLogLevel,
		StatsURL:          os.Getenv("STATS_URL"),
		SPFLBaseURL:       DefaultSPFLBaseURL,
		UpdateInterval:    DefaultUpdateInterval,
		HTTPTimeout:       DefaultHTTPTimeout,
		RequestsPerMinute: DefaultRequestsPerMinute,
		AlertCooldown:     DefaultAlertCooldown,
	}

	if v := os.Getenv("PROBABILITY_METHOD"); v != "" {
		cfg.ProbabilityMethod = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv("PREDICTOR_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
			cfg.HasSeed = true
		}
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("SPFL_BASE_URL"); v != "" {
		cfg.SPFLBaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("UPDATE_INTERVAL_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.UpdateInterval = time.Duration(f * float64(time.Hour))
		}
	}

	if v := os.Getenv("HTTP_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPTimeout = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RequestsPerMinute = n
		}
	}

	if v := os.Getenv("ALERT_COOLDOWN_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AlertCooldown = time.Duration(n) * time.Minute
		}
	}

	return cfg
}

// Validate checks that configuration values are within acceptable ranges.
func Validate(cfg Config) error {
	if cfg.ProbabilityMethod != "poisson" && cfg.ProbabilityMethod != "ratio" {
		return fmt.Errorf("PROBABILITY_METHOD must be poisson or ratio, got %q", cfg.ProbabilityMethod)
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if cfg.UpdateInterval < time.Minute {
		return fmt.Errorf("UPDATE_INTERVAL_HOURS must be at least one minute, got %v", cfg.UpdateInterval)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SEC must be positive, got %v", cfg.HTTPTimeout)
	}
	if cfg.RequestsPerMinute <= 0 || cfg.RequestsPerMinute > 600 {
		return fmt.Errorf("REQUESTS_PER_MINUTE must be between 1 and 600, got %d", cfg.RequestsPerMinute)
	}
	if cfg.AlertCooldown < 0 {
		return fmt.Errorf("ALERT_COOLDOWN_MIN must be non-negative, got %v", cfg.AlertCooldown)
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLogLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLogLevel(level string) slog.Level {
	if l, ok := logLevels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Summary renders the settings worth logging at startup.
func Summary(cfg Config) string {
	seed := "random"
	if cfg.HasSeed {
		seed = strconv.FormatUint(cfg.Seed, 10)
	}
	source := cfg.StatsURL
	if source == "" {
		source = "none"
	}
	return fmt.Sprintf(" method=%s seed=%s db=%s stats=%s interval=%v",
		cfg.ProbabilityMethod, seed, cfg.DBPath, source, cfg.UpdateInterval)
}
