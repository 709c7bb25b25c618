package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"b3quant/internal/config"
	"b3quant/internal/domain"
	"b3quant/internal/gather"
	"b3quant/internal/marketdata"
	"b3quant/internal/store"
	"b3quant/internal/util"
)

func main() {
	perEntity := flag.Bool("per-entity-start", false, "resolve the fetch start date per entity instead of from the table-wide maximum")
	flag.Parse()

	cfgPath := "config/b3quant.yaml"
	if p := os.Getenv("B3QUANT_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Dual logger: stdout + /tmp log file.
	logFileName := fmt.Sprintf("/tmp/prices-job-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.Create(logFileName)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	util.SetDefault(util.NewLoggerTo(w, cfg.Logging.Level, cfg.Logging.Format))

	cstore := store.NewCSVCompanyStore(cfg.Storage.CompaniesPath)
	companies, err := cstore.ReadCompanies(context.Background())
	if err != nil {
		log.Fatalf("failed to read company file (run companies-job first): %v", err)
	}

	entities := make([]gather.Entity, 0, len(companies))
	for _, c := range companies {
		symbol := c.PrimarySymbol()
		if symbol == "" {
			continue
		}
		entities = append(entities, gather.Entity{
			ID:     c.CVMCode,
			Symbol: symbol + cfg.Provider.SymbolSuffix,
		})
	}
	slog.Info("resolved entities", "companies", len(companies), "withSymbols", len(entities))

	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatalf("failed to build provider: %v", err)
	}

	defaultStart, err := time.Parse(domain.DateLayout, cfg.Gather.Prices.DefaultStartDate)
	if err != nil {
		log.Fatalf("invalid default_start_date: %v", err)
	}
	var end time.Time
	if cfg.Gather.Prices.EndDate != "" {
		if end, err = time.Parse(domain.DateLayout, cfg.Gather.Prices.EndDate); err != nil {
			log.Fatalf("invalid end_date: %v", err)
		}
	}

	pstore := store.NewParquetStore(cfg.Storage.PricesPath)
	updater := gather.NewPriceUpdater(provider, pstore, entities,
		defaultStart, end, cfg.Gather.Prices.MaxWorkers)
	updater.PerEntityStart = cfg.Gather.Prices.PerEntityStart || *perEntity

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("starting %s gatherer\n", updater.Name())
	if err := updater.Run(ctx); err != nil {
		log.Fatalf("gatherer error: %v", err)
	}
}

func newProvider(cfg *config.Config) (marketdata.Provider, error) {
	switch cfg.Provider.Kind {
	case "yahoo":
		return marketdata.NewYahooProvider(""), nil
	case "alpaca":
		if cfg.Provider.APIKey == "" || cfg.Provider.APISecret == "" {
			return nil, fmt.Errorf("alpaca provider needs api_key and api_secret")
		}
		return marketdata.NewAlpacaProvider(cfg.Provider.APIKey, cfg.Provider.APISecret, cfg.Provider.DataURL), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}
}
