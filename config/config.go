// Package config reads the application settings from the environment and
// an optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	StoreDir    string
	PostgresDSN string

	// Market data
	Currency         string
	CoinGeckoAPIKey  string
	CoinGeckoBaseURL string

	// Browsing
	PageSize int
	CacheTTL time.Duration

	// Cross-process sync
	PollInterval time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		StoreDir:    getEnv("FOLIO_STORE", ".folio"),
		PostgresDSN: os.Getenv("FOLIO_POSTGRES_DSN"),

		Currency:         getEnv("FOLIO_CURRENCY", "usd"),
		CoinGeckoAPIKey:  os.Getenv("COINGECKO_API_KEY"),
		CoinGeckoBaseURL: os.Getenv("COINGECKO_BASE_URL"),

		PageSize: getEnvInt("FOLIO_PAGE_SIZE", 15),
		CacheTTL: getEnvDuration("FOLIO_CACHE_TTL", 5*time.Minute),

		PollInterval: getEnvDuration("FOLIO_POLL_INTERVAL", 2*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
