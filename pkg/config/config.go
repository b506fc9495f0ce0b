// Package config loads process configuration from environment variables:
// godotenv for local .env files, os.Getenv with typed defaults for
// everything else.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// HTTP
	HTTPHost string
	HTTPPort string

	// Database
	DatabaseURL    string
	DatabaseDriver string // "postgres", "sqlite", or "auto" (default)
	SQLitePath     string
	SkipMigrations bool

	// Redis (API-key cache)
	RedisURL string

	// RabbitMQ (outbox transport)
	RabbitMQURL string

	// Outbox
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int

	// Account bootstrap
	CreateAccountSecretCode string

	// Reminders background job
	EnableRemindersJob  bool
	ReminderExpansionInterval time.Duration
	ReminderDispatchInterval  time.Duration

	// Search
	MaxEventsReturnedBySearch int

	// Webhook delivery
	WebhookDeliveryTimeout time.Duration

	// OAuth client credentials, per provider. Load reads them from the
	// environment, but nothing else in the module uses them: provider
	// adapters take their client credentials only from the account's
	// AccountIntegration, with no fallback to these values.
	GoogleClientID      string
	GoogleClientSecret  string
	OutlookClientID     string
	OutlookClientSecret string

	// Provider plugin host (External Provider Adapter Contract)
	ProviderPluginPaths []string

	// Observability
	ServiceName        string
	ServiceVersion     string
	OTelExporterOTLPEndpoint string
	OTelSampleRatio    float64
	MetricsAddr        string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbDriver := getEnv("DATABASE_DRIVER", "auto")
	dbURL := getEnv("DATABASE_URL", "")
	sqlitePath := getEnv("SQLITE_PATH", getDefaultSQLitePath())

	if dbURL == "" && dbDriver == "auto" {
		dbDriver = "sqlite"
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPHost: getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DatabaseURL:    dbURL,
		DatabaseDriver: dbDriver,
		SQLitePath:     sqlitePath,
		SkipMigrations: getBoolEnv("SKIP_DB_MIGRATIONS", false),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:   getIntEnv("OUTBOX_MAX_RETRIES", 5),

		CreateAccountSecretCode: getEnv("CREATE_ACCOUNT_SECRET_CODE", ""),

		EnableRemindersJob:        getBoolEnv("ENABLE_REMINDERS_JOB", true),
		ReminderExpansionInterval: getDurationEnv("REMINDER_EXPANSION_INTERVAL", 30*time.Minute),
		ReminderDispatchInterval:  getDurationEnv("REMINDER_DISPATCH_INTERVAL", 1*time.Minute),

		MaxEventsReturnedBySearch: getIntEnv("MAX_EVENTS_RETURNED_BY_SEARCH", 200),

		WebhookDeliveryTimeout: getDurationEnv("WEBHOOK_DELIVERY_TIMEOUT", 10*time.Second),

		GoogleClientID:      getEnv("GOOGLE_OAUTH_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_OAUTH_CLIENT_SECRET", ""),
		OutlookClientID:     getEnv("OUTLOOK_OAUTH_CLIENT_ID", ""),
		OutlookClientSecret: getEnv("OUTLOOK_OAUTH_CLIENT_SECRET", ""),

		ProviderPluginPaths: getPathListEnv("NITRO_PROVIDER_PLUGIN_PATH"),

		ServiceName:              getEnv("OTEL_SERVICE_NAME", "nitro-scheduler"),
		ServiceVersion:           getEnv("OTEL_SERVICE_VERSION", "dev"),
		OTelExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelSampleRatio:          getFloatEnv("OTEL_TRACES_SAMPLER_ARG", 1.0),
		MetricsAddr:              getEnv("METRICS_ADDR", "0.0.0.0:9090"),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// IsSQLite returns true if using SQLite as the database.
func (c *Config) IsSQLite() bool { return c.DatabaseDriver == "sqlite" }

// IsPostgres returns true if using PostgreSQL as the database.
func (c *Config) IsPostgres() bool { return c.DatabaseDriver == "postgres" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getPathListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	separator := ":"
	if os.PathSeparator == '\\' {
		separator = ";"
	}
	result := []string{}
	current := ""
	for i := 0; i < len(value); i++ {
		if string(value[i]) == separator {
			if current != "" {
				result = append(result, current)
			}
			current = ""
		} else {
			current += string(value[i])
		}
	}
	if current != "" {
		result = append(result, current)
	}
	return result
}

func getDefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nitro/data.db"
	}
	return home + "/.nitro/data.db"
}
