// Package config provides configuration management for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// ProductionConfig holds all configuration for the service
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	Scoring    ScoringConfig    `json:"scoring"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
	Document   DocumentConfig   `json:"document"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
	AutoMigrate     bool          `json:"auto_migrate"`
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	EnableMetrics     bool          `json:"enable_metrics"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
}

type SecurityConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`

	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window
	RateLimitWindow time.Duration `json:"rate_limit_window"`

	XFrameOptions  string `json:"x_frame_options"`
	ReferrerPolicy string `json:"referrer_policy"`
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`

	EnableAccessLog bool `json:"enable_access_log"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled     bool          `json:"enabled"`
	RedisURL    string        `json:"redis_url"`
	RedisDB     int           `json:"redis_db"`
	RedisPrefix string        `json:"redis_prefix"`
	DefaultTTL  time.Duration `json:"default_ttl"`
}

// ScoringConfig tunes the recommendation engine
type ScoringConfig struct {
	Model                 string        `json:"model"` // bounded, weighted
	TopN                  int           `json:"top_n"`
	CapacityBonusMax      int           `json:"capacity_bonus_max"`
	DefaultMarkupPercent  float64       `json:"default_markup_percent"`
	MetricsCacheTTL       time.Duration `json:"metrics_cache_ttl"`
	MaxConcurrentFetches  int           `json:"max_concurrent_fetches"`
	AutoSelectLockTimeout time.Duration `json:"auto_select_lock_timeout"`
}

// SchedulerConfig controls background jobs
type SchedulerConfig struct {
	MetricsWarmupEnabled  bool          `json:"metrics_warmup_enabled"`
	MetricsWarmupInterval time.Duration `json:"metrics_warmup_interval"`
	// Standard 5-field cron expression; overrides the interval when set
	MetricsWarmupSchedule string `json:"metrics_warmup_schedule"`
}

// WarmupSpec returns the cron spec the metrics warm-up job runs on
func (c SchedulerConfig) WarmupSpec() string {
	if c.MetricsWarmupSchedule != "" {
		return c.MetricsWarmupSchedule
	}
	return "@every " + c.MetricsWarmupInterval.String()
}

// DocumentConfig points the quote PDF at a UTF-8 TrueType font. Without one the
// PDF falls back to the Latin-1 core font.
type DocumentConfig struct {
	FontPath     string `json:"font_path"`
	BoldFontPath string `json:"bold_font_path"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Variables already set in the environment win over the .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "printshop"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableMetrics:     getEnvBool("SERVER_ENABLE_METRICS", true),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 600),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			XFrameOptions:    getEnvString("X_FRAME_OPTIONS", "DENY"),
			ReferrerPolicy:   getEnvString("REFERRER_POLICY", "strict-origin-when-cross-origin"),
		},
		Logging: LoggingConfig{
			Level:           getEnvString("LOG_LEVEL", "info"),
			Output:          getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:        getEnvString("LOG_FILE_PATH", "/var/log/printshop/app.log"),
			MaxSize:         getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:          getEnvInt("LOG_MAX_AGE", 30),
			Compress:        getEnvBool("LOG_COMPRESS", true),
			EnableAccessLog: getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", true),
			RedisURL:    getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:     getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix: getEnvString("CACHE_REDIS_PREFIX", "printshop:"),
			DefaultTTL:  getEnvDuration("CACHE_DEFAULT_TTL", 1*time.Hour),
		},
		Scoring: ScoringConfig{
			Model:                 getEnvString("SCORING_MODEL", "bounded"),
			TopN:                  getEnvInt("SCORING_TOP_N", 5),
			CapacityBonusMax:      getEnvInt("SCORING_CAPACITY_BONUS_MAX", 5),
			DefaultMarkupPercent:  getEnvFloat("SCORING_DEFAULT_MARKUP_PERCENT", 30),
			MetricsCacheTTL:       getEnvDuration("SCORING_METRICS_CACHE_TTL", 10*time.Minute),
			MaxConcurrentFetches:  getEnvInt("SCORING_MAX_CONCURRENT_FETCHES", 8),
			AutoSelectLockTimeout: getEnvDuration("SCORING_AUTO_SELECT_LOCK_TIMEOUT", 30*time.Second),
		},
		Scheduler: SchedulerConfig{
			MetricsWarmupEnabled:  getEnvBool("SCHEDULER_METRICS_WARMUP_ENABLED", true),
			MetricsWarmupInterval: getEnvDuration("SCHEDULER_METRICS_WARMUP_INTERVAL", 5*time.Minute),
			MetricsWarmupSchedule: getEnvString("SCHEDULER_METRICS_WARMUP_SCHEDULE", ""),
		},
		Document: DocumentConfig{
			FontPath:     getEnvString("DOCUMENT_FONT_PATH", ""),
			BoldFontPath: getEnvString("DOCUMENT_BOLD_FONT_PATH", ""),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:   getEnvString("BUILD_TIME", "unknown"),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errs []string

	if cfg.Database.Host == "" {
		errs = append(errs, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errs = append(errs, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errs = append(errs, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errs = append(errs, "DB_USER is required")
	}
	if cfg.Database.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.IdleTimeout <= 0 {
		errs = append(errs, "SERVER_IDLE_TIMEOUT must be positive")
	}

	if cfg.Logging.Level != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		valid := false
		for _, level := range validLevels {
			if cfg.Logging.Level == level {
				valid = true
				break
			}
		}
		if !valid {
			errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
		}
	}
	switch cfg.Logging.Output {
	case "stdout":
	case "file", "both":
		if cfg.Logging.FilePath == "" {
			errs = append(errs, "LOG_FILE_PATH is required when logging to a file")
		}
	default:
		errs = append(errs, "LOG_OUTPUT must be one of: stdout, file, both")
	}

	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		errs = append(errs, "CACHE_REDIS_URL is required when cache is enabled")
	}

	if cfg.Scoring.Model != "bounded" && cfg.Scoring.Model != "weighted" {
		errs = append(errs, "SCORING_MODEL must be one of: bounded, weighted")
	}
	if cfg.Scoring.TopN <= 0 {
		errs = append(errs, "SCORING_TOP_N must be positive")
	}
	if cfg.Scoring.CapacityBonusMax < 0 {
		errs = append(errs, "SCORING_CAPACITY_BONUS_MAX must not be negative")
	}
	if cfg.Scoring.DefaultMarkupPercent < 0 {
		errs = append(errs, "SCORING_DEFAULT_MARKUP_PERCENT must not be negative")
	}
	if cfg.Scoring.MaxConcurrentFetches <= 0 {
		errs = append(errs, "SCORING_MAX_CONCURRENT_FETCHES must be positive")
	}

	if cfg.Scheduler.MetricsWarmupEnabled {
		if cfg.Scheduler.MetricsWarmupSchedule != "" {
			if _, err := cron.ParseStandard(cfg.Scheduler.MetricsWarmupSchedule); err != nil {
				errs = append(errs, fmt.Sprintf("SCHEDULER_METRICS_WARMUP_SCHEDULE is invalid: %v", err))
			}
		} else if cfg.Scheduler.MetricsWarmupInterval <= 0 {
			errs = append(errs, "SCHEDULER_METRICS_WARMUP_INTERVAL must be positive")
		}
	}

	if cfg.Document.BoldFontPath != "" && cfg.Document.FontPath == "" {
		errs = append(errs, "DOCUMENT_BOLD_FONT_PATH requires DOCUMENT_FONT_PATH")
	}
	for key, path := range map[string]string{
		"DOCUMENT_FONT_PATH":      cfg.Document.FontPath,
		"DOCUMENT_BOLD_FONT_PATH": cfg.Document.BoldFontPath,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, fmt.Sprintf("%s is not readable: %v", key, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RedisKey namespaces a cache key with the configured prefix
func (c CacheConfig) RedisKey(parts ...string) string {
	return c.RedisPrefix + strings.Join(parts, ":")
}
