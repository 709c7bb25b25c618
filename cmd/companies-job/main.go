package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"b3quant/internal/b3"
	"b3quant/internal/config"
	"b3quant/internal/gather"
	"b3quant/internal/store"
	"b3quant/internal/util"
)

func main() {
	refresh := flag.Bool("refresh", false, "re-scrape the registry even if the reference file already exists")
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
	logFileName := fmt.Sprintf("/tmp/companies-job-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.Create(logFileName)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	util.SetDefault(util.NewLoggerTo(w, cfg.Logging.Level, cfg.Logging.Format))

	cstore := store.NewCSVCompanyStore(cfg.Storage.CompaniesPath)
	if cstore.Exists() && !*refresh {
		fmt.Printf("company file %s already exists, skipping scrape (use -refresh to force)\n", cfg.Storage.CompaniesPath)
		return
	}

	var limiter *util.RateLimiter
	if cfg.Gather.Companies.RateLimitPerMin > 0 {
		limiter = util.NewRateLimiter(cfg.Gather.Companies.RateLimitPerMin)
	}
	client := b3.NewClient(cfg.Gather.Companies.BaseURL, cfg.Gather.Companies.PageSize, limiter)

	gatherer := gather.NewCompanyGatherer(client, cstore, cfg.Gather.Companies.MaxWorkers)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("starting %s gatherer\n", gatherer.Name())
	if err := gatherer.Run(ctx); err != nil {
		log.Fatalf("gatherer error: %v", err)
	}
}
