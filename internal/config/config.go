package config

import (
	"os"
	"strconv"
	"time"

	"mercadito/internal/cache"
	"mercadito/internal/database"
	"mercadito/internal/external"
	"mercadito/internal/mail"
	"mercadito/internal/messaging"
	"mercadito/internal/search"
)

// Config contains application configuration
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string
	BaseURL   string

	Database      database.Config
	NATS          messaging.Config
	Valkey        cache.Config
	Elasticsearch search.Config
	MercadoPago   external.MercadoPagoConfig
	PayPal        external.PayPalConfig
	Mail          mail.Config
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		BaseURL:   getEnv("BASE_URL", "http://localhost:8080"),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "mercadito"),
			Password:           getEnv("DB_PASSWORD", "mercadito123"),
			DBName:             getEnv("DB_NAME", "mercadito"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "mercadito"),
			ClientID:  getEnv("NATS_CLIENT_ID", "mercadito-api"),
		},

		Valkey: cache.Config{
			Addr:         getEnv("VALKEY_ADDR", ""),
			Password:     getEnv("VALKEY_PASSWORD", ""),
			UsersHashKey: getEnv("VALKEY_USERS_HASH_KEY", "users:auth"),
			CatalogTTL:   time.Duration(getEnvInt("VALKEY_CATALOG_TTL_SEC", 60)) * time.Second,
		},

		Elasticsearch: search.Config{
			URL:        getEnv("ELASTICSEARCH_URL", ""),
			Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:      getEnv("ELASTICSEARCH_INDEX", "products"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		},

		MercadoPago: external.MercadoPagoConfig{
			BaseURL:     getEnv("MERCADO_PAGO_API_URL", "https://api.mercadopago.com"),
			AccessToken: getEnv("MERCADO_PAGO_ACCESS_TOKEN", ""),
			Currency:    getEnv("MERCADO_PAGO_CURRENCY", "UYU"),
			Timeout:     time.Duration(getEnvInt("MERCADO_PAGO_TIMEOUT_SEC", 10)) * time.Second,
		},

		PayPal: external.PayPalConfig{
			ClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
			ClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
			Mode:         getEnv("PAYPAL_MODE", "sandbox"),
			Currency:     getEnv("PAYPAL_CURRENCY", "USD"),
			Timeout:      time.Duration(getEnvInt("PAYPAL_TIMEOUT_SEC", 10)) * time.Second,
		},

		Mail: mail.Config{
			Host:       getEnv("MAIL_HOST", "localhost"),
			Port:       getEnvInt("MAIL_PORT", 587),
			Username:   getEnv("MAIL_USERNAME", ""),
			Password:   getEnv("MAIL_PASSWORD", ""),
			From:       getEnv("MAIL_FROM", "no-reply@mercadito.local"),
			AdminEmail: getEnv("MAIL_ADMIN", ""),
		},
	}
}

// getEnv gets an environment variable or returns the default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
