package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	NLU           NLUConfig
	Reconcile     ReconcileConfig
	Currency      CurrencyConfig
	Notify        NotifyConfig
	Observability ObservabilityConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NLUConfig controls parsing defaults.
type NLUConfig struct {
	DefaultLanguage string
}

// ReconcileConfig bounds the receipt-voice matching window.
type ReconcileConfig struct {
	TimeWindowMinutes int
}

type CurrencyConfig struct {
	RatesURL        string
	CacheTTLMinutes int
	RequestsPerMin  int
}

type NotifyConfig struct {
	WebhookURL string
	AuthToken  string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "ovozpay-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		NLU: NLUConfig{
			DefaultLanguage: getEnv("NLU_DEFAULT_LANGUAGE", "ru"),
		},
		Reconcile: ReconcileConfig{
			TimeWindowMinutes: getEnvAsInt("RECONCILE_TIME_WINDOW_MINUTES", 5),
		},
		Currency: CurrencyConfig{
			RatesURL:        getEnv("CURRENCY_RATES_URL", "https://cbu.uz/uz/arkhiv-kursov-valyut/json/"),
			CacheTTLMinutes: getEnvAsInt("CURRENCY_CACHE_TTL_MINUTES", 60),
			RequestsPerMin:  getEnvAsInt("CURRENCY_REQUESTS_PER_MIN", 10),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			AuthToken:  getEnv("NOTIFY_AUTH_TOKEN", ""),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Reconcile.TimeWindowMinutes <= 0 {
		return nil, fmt.Errorf("RECONCILE_TIME_WINDOW_MINUTES must be positive, got %d", cfg.Reconcile.TimeWindowMinutes)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
