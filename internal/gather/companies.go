package gather

import (
	"context"
	"fmt"
	"log/slog"

	"b3quant/internal/b3"
	"b3quant/internal/domain"
	"b3quant/internal/store"
	"b3quant/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*CompanyGatherer)(nil)

// CompanyGatherer scrapes the listed-companies registry and writes the
// normalized reference file. Detail records are fetched in parallel through
// a bounded worker pool; a company whose detail fetch fails keeps its
// listing row without codes, and the run continues.
type CompanyGatherer struct {
	client     *b3.Client
	store      store.CompanyStore
	maxWorkers int
	log        *slog.Logger
}

// NewCompanyGatherer creates a CompanyGatherer with the given client, target
// store, and worker-pool size.
func NewCompanyGatherer(client *b3.Client, s store.CompanyStore, maxWorkers int) *CompanyGatherer {
	return &CompanyGatherer{
		client:     client,
		store:      s,
		maxWorkers: maxWorkers,
		log:        slog.Default().With("gatherer", "companies"),
	}
}

// Name returns the gatherer identifier.
func (g *CompanyGatherer) Name() string { return "companies" }

// Run fetches every listing page, enriches each company with its detail
// record, and overwrites the reference file.
func (g *CompanyGatherer) Run(ctx context.Context) error {
	listings, err := g.client.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("listing companies: %w", err)
	}
	g.log.Info("fetched listings", "companies", len(listings))

	details, errs := util.ParallelMap(ctx, g.maxWorkers, listings,
		func(ctx context.Context, l b3.Listing) (*b3.Detail, error) {
			return g.client.GetDetail(ctx, l.CodeCVM.String())
		})
	if ctx.Err() != nil {
		return ctx.Err()
	}

	failed := 0
	out := make([]domain.Company, 0, len(listings))
	for i, l := range listings {
		if errs[i] != nil {
			failed++
			g.log.Warn("detail fetch failed", "codeCVM", l.CodeCVM, "err", errs[i])
			out = append(out, b3.Normalize(l, nil))
			continue
		}
		out = append(out, b3.Normalize(l, details[i]))
	}
	if failed > 0 {
		g.log.Info("detail fetches failed", "failed", failed, "total", len(listings))
	}

	if err := g.store.WriteCompanies(ctx, out); err != nil {
		return fmt.Errorf("writing company file: %w", err)
	}
	g.log.Info("company file written", "companies", len(out))
	return nil
}
