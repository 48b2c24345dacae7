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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetAppVersion() string
}

// RateLimitConfig provides settings for the per-IP API rate limiter.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// PhoneConfig provides the digit bounds used when validating numbers.
type PhoneConfig interface {
	GetPhoneMinDigits() int
	GetPhoneMaxDigits() int
	GetPhoneSingleMinDigits() int
}

// BulkConfig provides settings for bulk imports.
type BulkConfig interface {
	GetBulkMaxBatchSize() int
	GetBulkLookupConcurrency() int
	GetBulkRouteAliases() []string
	GetBulkMaxUploadBytes() int64
}

// SchedulerConfig provides settings for the asynq queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetBulkJobRetention() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketImports() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	AppVersion            string
	HTTPAddr              string
	DatabaseURL           string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RateLimitRPS          float64
	RateLimitBurst        int
	PhoneMinDigits        int
	PhoneMaxDigits        int
	PhoneSingleMinDigits  int
	BulkMaxBatchSize      int
	BulkLookupConcurrency int
	BulkRouteAliases      []string
	BulkMaxUploadBytes    int64
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	BulkJobRetention      time.Duration
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOMaxFileSize      int64
	MinioBucketImports    string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetAppVersion() string    { return c.AppVersion }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// PhoneConfig implementation
func (c *Config) GetPhoneMinDigits() int       { return c.PhoneMinDigits }
func (c *Config) GetPhoneMaxDigits() int       { return c.PhoneMaxDigits }
func (c *Config) GetPhoneSingleMinDigits() int { return c.PhoneSingleMinDigits }

// BulkConfig implementation
func (c *Config) GetBulkMaxBatchSize() int      { return c.BulkMaxBatchSize }
func (c *Config) GetBulkLookupConcurrency() int { return c.BulkLookupConcurrency }
func (c *Config) GetBulkRouteAliases() []string { return c.BulkRouteAliases }
func (c *Config) GetBulkMaxUploadBytes() int64  { return c.BulkMaxUploadBytes }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool          { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string          { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int           { return c.AsynqConcurrency }
func (c *Config) GetBulkJobRetention() time.Duration { return c.BulkJobRetention }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64    { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketImports() string { return c.MinioBucketImports }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// LoadWithoutDatabase reads configuration for commands that work without a
// database, such as normalizing numbers from the CLI.
func LoadWithoutDatabase() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		AppVersion:            getEnv("APP_VERSION", "1.0.0"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitRPS:          mustFloat(getEnv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst:        mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		PhoneMinDigits:        mustInt(getEnv("PHONE_MIN_DIGITS", "8")),
		PhoneMaxDigits:        mustInt(getEnv("PHONE_MAX_DIGITS", "15")),
		PhoneSingleMinDigits:  mustInt(getEnv("PHONE_SINGLE_MIN_DIGITS", "10")),
		BulkMaxBatchSize:      mustInt(getEnv("BULK_MAX_BATCH_SIZE", "1000")),
		BulkLookupConcurrency: mustInt(getEnv("BULK_LOOKUP_CONCURRENCY", "8")),
		BulkRouteAliases:      splitCSV(getEnv("BULK_ROUTE_ALIASES", "/phone-numbers-bulk")),
		BulkMaxUploadBytes:    mustInt64(getEnv("BULK_MAX_UPLOAD_BYTES", "5242880")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "imports"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		BulkJobRetention:      mustDuration(getEnv("BULK_JOB_RETENTION", "24h")),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:      mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketImports:    getEnv("MINIO_BUCKET_IMPORTS", "phonebook-imports"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PhoneMinDigits < 8 || c.PhoneMaxDigits > 15 || c.PhoneMinDigits > c.PhoneMaxDigits {
		return fmt.Errorf("PHONE_MIN_DIGITS and PHONE_MAX_DIGITS must satisfy 8 <= min <= max <= 15")
	}
	if c.PhoneSingleMinDigits < c.PhoneMinDigits || c.PhoneSingleMinDigits > c.PhoneMaxDigits {
		return fmt.Errorf("PHONE_SINGLE_MIN_DIGITS must lie within PHONE_MIN_DIGITS..PHONE_MAX_DIGITS")
	}
	if c.BulkMaxBatchSize <= 0 {
		return fmt.Errorf("BULK_MAX_BATCH_SIZE must be positive")
	}
	if c.BulkLookupConcurrency <= 0 {
		c.BulkLookupConcurrency = 1
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	for _, alias := range c.BulkRouteAliases {
		if !strings.HasPrefix(alias, "/") {
			return fmt.Errorf("BULK_ROUTE_ALIASES entries must start with '/': %q", alias)
		}
	}
	return nil
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

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
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
