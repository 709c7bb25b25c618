package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "b3quant.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage:
  companies_path: "/tmp/b3quant/companies.csv"
  prices_path: "/tmp/b3quant/prices.parquet"
  sqlite_path: "/tmp/b3quant/b3quant.db"
provider:
  kind: "yahoo"
logging:
  level: "info"
  format: "json"
gather:
  companies:
    page_size: 120
    max_workers: 32
    rate_limit_per_min: 300
  prices:
    default_start_date: "2020-01-01"
    max_workers: 16
strategy:
  short_window: 20
  long_window: 50
  initial_capital: 100000
  short_range: [5, 10, 20]
  long_range: [50, 100, 200]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.PricesPath != "/tmp/b3quant/prices.parquet" {
		t.Errorf("PricesPath = %q", cfg.Storage.PricesPath)
	}
	if cfg.Gather.Prices.MaxWorkers != 16 {
		t.Errorf("Prices.MaxWorkers = %d, want 16", cfg.Gather.Prices.MaxWorkers)
	}
	if cfg.Strategy.ShortWindow != 20 || cfg.Strategy.LongWindow != 50 {
		t.Errorf("windows = (%d, %d), want (20, 50)", cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	}
	if len(cfg.Strategy.ShortRange) != 3 || cfg.Strategy.ShortRange[0] != 5 {
		t.Errorf("ShortRange = %v", cfg.Strategy.ShortRange)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  prices_path: "/tmp/prices.parquet"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider.Kind != "yahoo" {
		t.Errorf("default provider = %q, want yahoo", cfg.Provider.Kind)
	}
	if cfg.Gather.Companies.MaxWorkers != 32 {
		t.Errorf("default companies workers = %d, want 32", cfg.Gather.Companies.MaxWorkers)
	}
	if cfg.Gather.Prices.DefaultStartDate != "2020-01-01" {
		t.Errorf("default start date = %q", cfg.Gather.Prices.DefaultStartDate)
	}
	if cfg.Strategy.ShortWindow != 20 || cfg.Strategy.LongWindow != 50 {
		t.Errorf("default windows = (%d, %d)", cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	}
	if cfg.Strategy.InitialCapital != 100000 {
		t.Errorf("default capital = %v", cfg.Strategy.InitialCapital)
	}
}

func TestLoadRejectsDegenerateWindows(t *testing.T) {
	path := writeConfig(t, `
strategy:
  short_window: 50
  long_window: 50
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load accepted short_window >= long_window")
	}
	if !strings.Contains(err.Error(), "short_window") {
		t.Errorf("error should mention short_window: %v", err)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
provider:
  kind: "bloomberg"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted unknown provider kind")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  prices_path: "/from/file.parquet"
`)

	t.Setenv("B3QUANT_PRICES", "/from/env.parquet")
	t.Setenv("PROVIDER_KIND", "alpaca")
	t.Setenv("APCA_API_KEY_ID", "key-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.PricesPath != "/from/env.parquet" {
		t.Errorf("PricesPath = %q, want env override", cfg.Storage.PricesPath)
	}
	if cfg.Provider.Kind != "alpaca" {
		t.Errorf("Provider.Kind = %q, want alpaca", cfg.Provider.Kind)
	}
	if cfg.Provider.APIKey != "key-from-env" {
		t.Errorf("Provider.APIKey = %q, want env override", cfg.Provider.APIKey)
	}
}
