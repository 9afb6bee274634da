// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerSecond() float64
	GetRateLimitBurst() int
}

// RedisConfig provides settings for the lookup cache and task queue.
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// LookupConfig provides settings for the lookup sources and cache.
type LookupConfig interface {
	GetDefaultRegion() string
	GetLookupCacheTTL() time.Duration
	GetSourceTimeout() time.Duration
	GetDirectoryURL() string
	GetDirectoryAPIKey() string
	IsDirectoryEnabled() bool
	GetCallerIDURL() string
	GetCallerIDAPIKey() string
	GetCallerIDRatePerSecond() float64
	IsCallerIDEnabled() bool
	GetVideoComponents() []string
}

// HistoryConfig provides settings for the lookup history writer.
type HistoryConfig interface {
	GetHistoryBatchSize() int
	GetHistoryDebounce() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketContactPhotos() string
	GetPhotoURLTTL() time.Duration
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq worker.
type SchedulerConfig interface {
	RedisConfig
	GetSchedulerConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RateLimitPerSecond      float64
	RateLimitBurst          int
	RedisURL                string
	DefaultRegion           string
	LookupCacheTTL          time.Duration
	SourceTimeout           time.Duration
	DirectoryURL            string
	DirectoryAPIKey         string
	CallerIDURL             string
	CallerIDAPIKey          string
	CallerIDRatePerSecond   float64
	VideoComponents         []string
	HistoryBatchSize        int
	HistoryDebounce         time.Duration
	MinIOEndpoint           string
	MinIOAccessKey          string
	MinIOSecretKey          string
	MinIOUseSSL             bool
	MinioBucketContactPhoto string
	PhotoURLTTL             time.Duration
	SchedulerConcurrency    int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string            { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool          { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string       { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool        { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerSecond() float64 { return c.RateLimitPerSecond }
func (c *Config) GetRateLimitBurst() int         { return c.RateLimitBurst }

// RedisConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// LookupConfig implementation
func (c *Config) GetDefaultRegion() string          { return c.DefaultRegion }
func (c *Config) GetLookupCacheTTL() time.Duration  { return c.LookupCacheTTL }
func (c *Config) GetSourceTimeout() time.Duration   { return c.SourceTimeout }
func (c *Config) GetDirectoryURL() string           { return c.DirectoryURL }
func (c *Config) GetDirectoryAPIKey() string        { return c.DirectoryAPIKey }
func (c *Config) IsDirectoryEnabled() bool          { return c.DirectoryURL != "" }
func (c *Config) GetCallerIDURL() string            { return c.CallerIDURL }
func (c *Config) GetCallerIDAPIKey() string         { return c.CallerIDAPIKey }
func (c *Config) GetCallerIDRatePerSecond() float64 { return c.CallerIDRatePerSecond }
func (c *Config) IsCallerIDEnabled() bool           { return c.CallerIDURL != "" }
func (c *Config) GetVideoComponents() []string      { return c.VideoComponents }

// HistoryConfig implementation
func (c *Config) GetHistoryBatchSize() int          { return c.HistoryBatchSize }
func (c *Config) GetHistoryDebounce() time.Duration { return c.HistoryDebounce }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketContactPhotos() string {
	return c.MinioBucketContactPhoto
}
func (c *Config) GetPhotoURLTTL() time.Duration { return c.PhotoURLTTL }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetSchedulerConcurrency() int { return c.SchedulerConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitPerSecond:      mustFloat(getEnv("RATE_LIMIT_PER_SECOND", "20")),
		RateLimitBurst:          mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		RedisURL:                getEnv("REDIS_URL", ""),
		DefaultRegion:           strings.ToUpper(getEnv("DEFAULT_REGION", "US")),
		LookupCacheTTL:          mustDuration(getEnv("LOOKUP_CACHE_TTL", "10m")),
		SourceTimeout:           mustDuration(getEnv("LOOKUP_SOURCE_TIMEOUT", "1500ms")),
		DirectoryURL:            getEnv("DIRECTORY_URL", ""),
		DirectoryAPIKey:         getEnv("DIRECTORY_API_KEY", ""),
		CallerIDURL:             getEnv("CALLER_ID_URL", ""),
		CallerIDAPIKey:          getEnv("CALLER_ID_API_KEY", ""),
		CallerIDRatePerSecond:   mustFloat(getEnv("CALLER_ID_RATE_PER_SECOND", "5")),
		VideoComponents:         splitCSV(getEnv("DUO_COMPONENTS", "com.google.android.apps.tachyon/.TachyonConnectionService")),
		HistoryBatchSize:        mustInt(getEnv("HISTORY_BATCH_SIZE", "100")),
		HistoryDebounce:         mustDuration(getEnv("HISTORY_DEBOUNCE", "2s")),
		MinIOEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:             strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketContactPhoto: getEnv("MINIO_BUCKET_CONTACT_PHOTOS", "contact-photos"),
		PhotoURLTTL:             mustDuration(getEnv("PHOTO_URL_TTL", "1h")),
		SchedulerConcurrency:    mustInt(getEnv("SCHEDULER_CONCURRENCY", "5")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SourceTimeout <= 0 {
		return nil, fmt.Errorf("LOOKUP_SOURCE_TIMEOUT must be a positive duration")
	}
	if cfg.HistoryBatchSize <= 0 {
		return nil, fmt.Errorf("HISTORY_BATCH_SIZE must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
