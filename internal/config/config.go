package config

import (
	"os"
	"strconv"
	"time"

	"ruta/internal/cache"
	"ruta/internal/database"
	"ruta/internal/external"
	"ruta/internal/messaging"
)

// Config contains the application configuration
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	// FrontendURL is where checkout success/cancel pages live.
	FrontendURL string

	// JWTSecret verifies inbound bearer tokens (HS256).
	JWTSecret string

	// CancelNoticeHours is the cancellation-window policy parameter:
	// cancellations close this many hours before departure.
	CancelNoticeHours int

	Database      database.Config
	NATS          messaging.Config
	Elasticsearch ElasticsearchConfig
	Valkey        cache.Config
	Stripe        external.StripeConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CancelNoticeHours: getEnvInt("CANCEL_NOTICE_HOURS", 48),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "ruta"),
			Password:           getEnv("DB_PASSWORD", "ruta"),
			DBName:             getEnv("DB_NAME", "ruta"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "ruta"),
			ClientID:  getEnv("NATS_CLIENT_ID", "ruta-api"),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Valkey: cache.Config{
			Addr:     getEnv("VALKEY_ADDR", ""),
			Password: os.Getenv("VALKEY_PASSWORD"),
			TTL:      time.Duration(getEnvInt("VALKEY_TRIPS_TTL_SEC", 60)) * time.Second,
		},

		Stripe: external.StripeConfig{
			BaseURL:       getEnv("STRIPE_API_URL", "https://api.stripe.com"),
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("STRIPE_CURRENCY", "ron"),
			Timeout:       time.Duration(getEnvInt("STRIPE_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

// CancelNotice returns the cancellation window as a duration.
func (c *Config) CancelNotice() time.Duration {
	return time.Duration(c.CancelNoticeHours) * time.Hour
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
