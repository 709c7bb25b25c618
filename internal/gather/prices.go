package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"b3quant/internal/domain"
	"b3quant/internal/marketdata"
	"b3quant/internal/store"
	"b3quant/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*PriceUpdater)(nil)

// Entity is one company to fetch prices for: the stable internal id and the
// symbol the provider knows it by.
type Entity struct {
	ID     string
	Symbol string
}

// PriceUpdater performs the incremental fetch-and-merge run: it resolves the
// start date from the persisted table, fetches each entity's daily adjusted
// closes through a bounded worker pool, merges the results into the table
// with keep-last dedup on (entity_id, date), and writes the table back in
// full.
//
// The whole run is a read-modify-write of one file. Only this component
// mutates persisted price state, and the write happens once, after all
// parallel work has completed.
type PriceUpdater struct {
	provider     marketdata.Provider
	prices       store.PriceStore
	entities     []Entity
	defaultStart time.Time
	end          time.Time // zero means today
	maxWorkers   int

	// PerEntityStart resolves the fetch start per entity from that entity's
	// own last recorded date instead of the table-wide maximum. The global
	// policy under-fetches entities with stale data and never backfills
	// entities onboarded after the table was created; the per-entity policy
	// backfills both from defaultStart.
	PerEntityStart bool

	log *slog.Logger
}

// NewPriceUpdater creates a PriceUpdater for the given entities.
func NewPriceUpdater(provider marketdata.Provider, prices store.PriceStore, entities []Entity, defaultStart, end time.Time, maxWorkers int) *PriceUpdater {
	return &PriceUpdater{
		provider:     provider,
		prices:       prices,
		entities:     entities,
		defaultStart: defaultStart,
		end:          end,
		maxWorkers:   maxWorkers,
		log:          slog.Default().With("gatherer", "prices"),
	}
}

// Name returns the gatherer identifier.
func (u *PriceUpdater) Name() string { return "prices" }

// Run executes one update and discards the merged table.
func (u *PriceUpdater) Run(ctx context.Context) error {
	_, err := u.Update(ctx)
	return err
}

// Update executes one incremental update and returns the merged table. A
// table that exists but cannot be loaded is a fatal error; everything that
// goes wrong for a single entity is logged and skipped.
func (u *PriceUpdater) Update(ctx context.Context) ([]domain.PricePoint, error) {
	existing, err := u.prices.ReadPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading price table: %w", err)
	}

	end := u.end
	if end.IsZero() {
		end = domain.Day(time.Now().UTC())
	}

	// Global start date: the maximum date across the entire table. The last
	// recorded day is fetched again so refreshed values win in the merge.
	globalStart := u.defaultStart
	if maxDate, ok := store.MaxDate(existing); ok {
		globalStart = maxDate
	}

	perEntity := store.MaxDatePerEntity(existing)
	startFor := func(e Entity) time.Time {
		if !u.PerEntityStart {
			return globalStart
		}
		if last, ok := perEntity[e.ID]; ok {
			return last
		}
		return u.defaultStart
	}

	u.log.Info("starting price update",
		"entities", len(u.entities),
		"existingRows", len(existing),
		"globalStart", globalStart.Format(domain.DateLayout),
		"end", end.Format(domain.DateLayout),
		"perEntityStart", u.PerEntityStart,
	)

	fetched, errs := util.ParallelMap(ctx, u.maxWorkers, u.entities,
		func(ctx context.Context, e Entity) ([]domain.PricePoint, error) {
			closes, err := u.provider.DailyAdjCloses(ctx, e.Symbol, startFor(e), end)
			if err != nil {
				return nil, err
			}
			points := make([]domain.PricePoint, 0, len(closes))
			for _, c := range closes {
				points = append(points, domain.PricePoint{
					EntityID: e.ID,
					Date:     c.Date,
					AdjClose: c.AdjClose,
				})
			}
			return points, nil
		})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var incoming []domain.PricePoint
	skipped := 0
	for i, e := range u.entities {
		if errs[i] != nil {
			skipped++
			if errors.Is(errs[i], marketdata.ErrNoData) {
				u.log.Warn("no data for entity", "entity", e.ID, "symbol", e.Symbol)
			} else {
				u.log.Warn("fetch failed", "entity", e.ID, "symbol", e.Symbol, "err", errs[i])
			}
			continue
		}
		incoming = append(incoming, fetched[i]...)
	}

	merged := store.MergePrices(existing, incoming)
	if err := u.prices.WritePrices(ctx, merged); err != nil {
		return nil, fmt.Errorf("writing price table: %w", err)
	}

	u.log.Info("price update complete",
		"fetchedRows", len(incoming),
		"mergedRows", len(merged),
		"skippedEntities", skipped,
	)
	return merged, nil
}
