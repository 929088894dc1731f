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
}

// RedisConfig provides settings for Redis-backed numbering and the job queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// BillingConfig provides the document lifecycle defaults.
type BillingConfig interface {
	GetQuoteValidityDays() int
	GetInvoiceNetTermsDays() int
	GetDefaultCurrency() string
}

// ContactConfig provides defaults for contact data.
type ContactConfig interface {
	GetPhoneRegion() string
}

// MinIOConfig provides settings for exported document storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucketDocuments() string
	GetMinIOPresignTTL() time.Duration
}

// SMTPConfig provides outbound mail settings.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromEmail() string
	GetSMTPFromName() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAgencyName() string
	GetNotifyEmail() string
	GetSlackWebhookURL() string
}

// Config holds all application configuration.
type Config struct {
	Env            string
	HTTPAddr       string
	DatabaseURL    string
	MigrationsDir  string
	StoreDriver    string
	NumberingStore string

	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	QuoteValidityDays   int
	InvoiceNetTermsDays int
	DefaultCurrency     string
	PhoneRegion         string

	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOBucketDocuments string
	MinIOPresignTTL      time.Duration

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	SMTPFromName  string

	AgencyName      string
	NotifyEmail     string
	SlackWebhookURL string
}

// Database
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWT
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTP
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// Redis
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int    { return c.AsynqConcurrency }
func (c *Config) IsRedisEnabled() bool       { return c.RedisURL != "" }
func (c *Config) UsesRedisNumbering() bool   { return c.NumberingStore == "redis" }
func (c *Config) UsesMemoryStore() bool      { return c.StoreDriver == "memory" }

// Billing
func (c *Config) GetQuoteValidityDays() int   { return c.QuoteValidityDays }
func (c *Config) GetInvoiceNetTermsDays() int { return c.InvoiceNetTermsDays }
func (c *Config) GetDefaultCurrency() string  { return c.DefaultCurrency }

// Contact
func (c *Config) GetPhoneRegion() string { return c.PhoneRegion }

// MinIO
func (c *Config) GetMinIOEndpoint() string          { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string         { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string         { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool              { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucketDocuments() string   { return c.MinIOBucketDocuments }
func (c *Config) GetMinIOPresignTTL() time.Duration { return c.MinIOPresignTTL }
func (c *Config) IsMinIOEnabled() bool              { return c.MinIOEndpoint != "" }

// SMTP
func (c *Config) GetSMTPHost() string      { return c.SMTPHost }
func (c *Config) GetSMTPPort() int         { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string  { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string  { return c.SMTPPassword }
func (c *Config) GetSMTPFromEmail() string { return c.SMTPFromEmail }
func (c *Config) GetSMTPFromName() string  { return c.SMTPFromName }
func (c *Config) IsSMTPEnabled() bool      { return c.SMTPHost != "" }

// Notification
func (c *Config) GetAgencyName() string      { return c.AgencyName }
func (c *Config) GetNotifyEmail() string     { return c.NotifyEmail }
func (c *Config) GetSlackWebhookURL() string { return c.SlackWebhookURL }

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", "migrations"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		NumberingStore:       strings.ToLower(getEnv("NUMBERING_DRIVER", "store")),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:         containsWildcard(corsOrigins),
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		QuoteValidityDays:    mustInt(getEnv("QUOTE_VALIDITY_DAYS", "15")),
		InvoiceNetTermsDays:  mustInt(getEnv("INVOICE_NET_TERMS_DAYS", "30")),
		DefaultCurrency:      strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		PhoneRegion:          strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "TT")),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOBucketDocuments: getEnv("MINIO_BUCKET_DOCUMENTS", "crm-documents"),
		MinIOPresignTTL:      mustDuration(getEnv("MINIO_PRESIGN_TTL", "168h")),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:        getEnv("SMTP_FROM_EMAIL", ""),
		SMTPFromName:         getEnv("SMTP_FROM_NAME", "Agency CRM"),
		AgencyName:           getEnv("AGENCY_NAME", "Agency"),
		NotifyEmail:          getEnv("NOTIFY_EMAIL", ""),
		SlackWebhookURL:      getEnv("SLACK_WEBHOOK_URL", ""),
	}

	if cfg.StoreDriver != "memory" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required unless STORE_DRIVER=memory")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.UsesRedisNumbering() && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when NUMBERING_DRIVER=redis")
	}
	if cfg.QuoteValidityDays < 1 {
		return nil, fmt.Errorf("QUOTE_VALIDITY_DAYS must be a positive integer")
	}
	if cfg.InvoiceNetTermsDays < 0 {
		return nil, fmt.Errorf("INVOICE_NET_TERMS_DAYS must not be negative")
	}
	if cfg.IsSMTPEnabled() && cfg.SMTPFromEmail == "" {
		return nil, fmt.Errorf("SMTP_FROM_EMAIL is required when SMTP_HOST is set")
	}
	if len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ORIGINS contains *")
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
		return -1
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
