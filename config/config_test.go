package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	for _, key := range []string{"FOLIO_STORE", "FOLIO_POSTGRES_DSN", "FOLIO_CURRENCY", "COINGECKO_API_KEY",
		"COINGECKO_BASE_URL", "FOLIO_PAGE_SIZE", "FOLIO_CACHE_TTL", "FOLIO_POLL_INTERVAL"} {
		t.Setenv(key, "")
	}

	c := Load()
	if c.StoreDir != ".folio" || c.Currency != "usd" || c.PageSize != 15 {
		t.Errorf("Load() = %+v, want defaults", c)
	}
	if c.CacheTTL != 5*time.Minute || c.PollInterval != 2*time.Second {
		t.Errorf("Load() durations = %v %v", c.CacheTTL, c.PollInterval)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FOLIO_CURRENCY", "eur")
	t.Setenv("FOLIO_PAGE_SIZE", "25")
	t.Setenv("FOLIO_CACHE_TTL", "0s")
	t.Setenv("FOLIO_POLL_INTERVAL", "not a duration")

	c := Load()
	if c.Currency != "eur" {
		t.Errorf("Currency = %q, want eur", c.Currency)
	}
	if c.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", c.PageSize)
	}
	if c.CacheTTL != 0 {
		t.Errorf("CacheTTL = %v, want 0", c.CacheTTL)
	}
	if c.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want the default", c.PollInterval)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("COINGECKO_API_KEY=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	// godotenv never overrides the environment; clear it and restore it.
	t.Setenv("COINGECKO_API_KEY", "")
	os.Unsetenv("COINGECKO_API_KEY")

	if got := Load().CoinGeckoAPIKey; got != "from-dotenv" {
		t.Errorf("CoinGeckoAPIKey = %q, want from-dotenv", got)
	}
}
