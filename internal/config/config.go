package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the b3quant jobs.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Provider Provider       `yaml:"provider"`
	Logging  Logging        `yaml:"logging"`
	Gather   GatherConfig   `yaml:"gather"`
	Strategy StrategyConfig `yaml:"strategy"`
}

// Storage holds paths for data persistence.
type Storage struct {
	CompaniesPath string `yaml:"companies_path"` // companies.csv
	PricesPath    string `yaml:"prices_path"`    // prices.parquet
	SQLitePath    string `yaml:"sqlite_path"`    // best-params database
}

// Provider selects and configures the market-data provider.
type Provider struct {
	Kind         string `yaml:"kind"` // "yahoo" (default) or "alpaca"
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	DataURL      string `yaml:"data_url"`
	SymbolSuffix string `yaml:"symbol_suffix"` // appended to trading codes, e.g. ".SA" for B3 on Yahoo
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GatherConfig controls the companies and prices jobs.
type GatherConfig struct {
	Companies CompaniesJobConfig `yaml:"companies"`
	Prices    PricesJobConfig    `yaml:"prices"`
}

// CompaniesJobConfig holds parameters for the listed-companies scrape.
type CompaniesJobConfig struct {
	BaseURL         string `yaml:"base_url"`
	PageSize        int    `yaml:"page_size"`
	MaxWorkers      int    `yaml:"max_workers"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// PricesJobConfig holds parameters for the incremental price update.
type PricesJobConfig struct {
	DefaultStartDate string `yaml:"default_start_date"` // used when no table exists
	EndDate          string `yaml:"end_date"`           // empty means today
	MaxWorkers       int    `yaml:"max_workers"`
	PerEntityStart   bool   `yaml:"per_entity_start"` // resolve start date per entity instead of globally
}

// StrategyConfig defines momentum strategy and grid-search parameters.
type StrategyConfig struct {
	ShortWindow    int     `yaml:"short_window"`
	LongWindow     int     `yaml:"long_window"`
	InitialCapital float64 `yaml:"initial_capital"`
	ClampExposure  bool    `yaml:"clamp_exposure"` // clamp position to {-1,0,+1} instead of compounding
	ShortRange     []int   `yaml:"short_range"`    // grid-search candidates
	LongRange      []int   `yaml:"long_range"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, then applies environment variable overrides, defaults, and
// validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("B3QUANT_COMPANIES"); v != "" {
		cfg.Storage.CompaniesPath = v
	}
	if v := os.Getenv("B3QUANT_PRICES"); v != "" {
		cfg.Storage.PricesPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PROVIDER_KIND"); v != "" {
		cfg.Provider.Kind = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Provider.APISecret = v
	}
}

// applyDefaults fills unset fields with the values the original jobs used.
func applyDefaults(cfg *Config) {
	if cfg.Provider.Kind == "" {
		cfg.Provider.Kind = "yahoo"
	}
	if cfg.Gather.Companies.PageSize == 0 {
		cfg.Gather.Companies.PageSize = 120
	}
	if cfg.Gather.Companies.MaxWorkers == 0 {
		cfg.Gather.Companies.MaxWorkers = 32
	}
	if cfg.Gather.Prices.MaxWorkers == 0 {
		cfg.Gather.Prices.MaxWorkers = 32
	}
	if cfg.Gather.Prices.DefaultStartDate == "" {
		cfg.Gather.Prices.DefaultStartDate = "2020-01-01"
	}
	if cfg.Strategy.ShortWindow == 0 {
		cfg.Strategy.ShortWindow = 20
	}
	if cfg.Strategy.LongWindow == 0 {
		cfg.Strategy.LongWindow = 50
	}
	if cfg.Strategy.InitialCapital == 0 {
		cfg.Strategy.InitialCapital = 100000
	}
}

// validate rejects configurations the pipeline cannot run with.
func (c *Config) validate() error {
	if c.Strategy.ShortWindow >= c.Strategy.LongWindow {
		return fmt.Errorf("strategy: short_window (%d) must be less than long_window (%d)",
			c.Strategy.ShortWindow, c.Strategy.LongWindow)
	}
	if c.Strategy.InitialCapital <= 0 {
		return fmt.Errorf("strategy: initial_capital must be positive, got %v", c.Strategy.InitialCapital)
	}
	switch c.Provider.Kind {
	case "yahoo", "alpaca":
	default:
		return fmt.Errorf("provider: unknown kind %q (want yahoo or alpaca)", c.Provider.Kind)
	}
	return nil
}
