package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"b3quant/internal/config"
	"b3quant/internal/domain"
	"b3quant/internal/store"
	"b3quant/internal/strategy"
	"b3quant/internal/util"
)

func main() {
	optimize := flag.Bool("optimize", false, "grid-search window pairs per ticker and save the best to the params database")
	symbolsFlag := flag.String("symbols", "", "comma-separated ticker filter (default: every ticker with price data)")
	flag.Parse()

	cfgPath := "config/b3quant.yaml"
	if p := os.Getenv("B3QUANT_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cstore := store.NewCSVCompanyStore(cfg.Storage.CompaniesPath)
	companies, err := cstore.ReadCompanies(ctx)
	if err != nil {
		log.Fatalf("failed to read company file (run companies-job first): %v", err)
	}

	pstore := store.NewParquetStore(cfg.Storage.PricesPath)
	prices, err := pstore.ReadPrices(ctx)
	if err != nil {
		log.Fatalf("failed to read price table (run prices-job first): %v", err)
	}
	if len(prices) == 0 {
		log.Fatalf("price table %s is empty, run prices-job first", cfg.Storage.PricesPath)
	}

	var params *store.SQLiteStore
	if *optimize {
		if params, err = store.NewSQLiteStore(cfg.Storage.SQLitePath); err != nil {
			log.Fatalf("failed to open params database: %v", err)
		}
		defer params.Close()
	}

	filter := symbolFilter(*symbolsFlag)
	portfolios := make(map[string][]domain.PortfolioPoint)
	analyzed := 0

	for _, c := range companies {
		symbol := c.PrimarySymbol()
		if symbol == "" || (filter != nil && !filter[symbol]) {
			continue
		}
		series := store.EntitySeries(prices, c.CVMCode)
		if len(series) == 0 {
			continue
		}

		short, long := cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow
		if *optimize {
			best, ok := strategy.GridSearch(series, cfg.Strategy.ShortRange, cfg.Strategy.LongRange,
				cfg.Strategy.InitialCapital, cfg.Strategy.ClampExposure)
			if !ok {
				slog.Warn("grid search found no scoreable window pair", "symbol", symbol)
				continue
			}
			best.EntityID = c.CVMCode
			best.Symbol = symbol
			if err := params.SaveBestParams(ctx, best); err != nil {
				log.Fatalf("failed to save best params for %s: %v", symbol, err)
			}
			short, long = best.ShortWindow, best.LongWindow
			fmt.Printf("%s: best windows short=%d long=%d (sharpe %.2f)\n",
				symbol, short, long, best.SharpeRatio)
		}

		signals := strategy.ComputeSignals(series, short, long)
		portfolio := strategy.Backtest(signals, cfg.Strategy.InitialCapital, cfg.Strategy.ClampExposure)
		report, err := strategy.Summarize(portfolio)
		if err != nil {
			slog.Warn("skipping ticker", "symbol", symbol, "err", err)
			continue
		}

		fmt.Printf("%s (%s) short=%d long=%d\n%s\n", symbol, c.TradingName, short, long,
			strategy.FormatReport(report))
		portfolios[symbol] = portfolio
		analyzed++
	}

	if analyzed == 0 {
		log.Fatalf("no ticker had enough price data to analyze")
	}

	if len(portfolios) > 1 {
		blended := strategy.Consolidate(portfolios)
		report, err := strategy.Summarize(asPortfolio(blended))
		if err != nil {
			slog.Warn("blended curve too short to summarize", "rows", len(blended), "err", err)
			return
		}
		fmt.Printf("\nEqual-weight blend of %d tickers (%d aligned days)\n%s\n",
			len(portfolios), len(blended), strategy.FormatReport(report))
	}
}

// symbolFilter parses the -symbols flag into a set, nil when unset.
func symbolFilter(s string) map[string]bool {
	if s == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, sym := range strings.Split(s, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			set[strings.ToUpper(sym)] = true
		}
	}
	return set
}

// asPortfolio adapts the blended curve to the portfolio shape Summarize
// expects. Only Total, Return, and HasReturn are meaningful on a blend.
func asPortfolio(blended []strategy.BlendedPoint) []domain.PortfolioPoint {
	out := make([]domain.PortfolioPoint, len(blended))
	for i, b := range blended {
		out[i] = domain.PortfolioPoint{
			Date:      b.Date,
			Total:     b.Total,
			Return:    b.Return,
			HasReturn: b.HasReturn,
		}
	}
	return out
}
