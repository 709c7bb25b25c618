package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"b3quant/internal/domain"
)

// Compile-time interface check.
var _ PriceStore = (*ParquetStore)(nil)

// ParquetStore implements PriceStore as a single Parquet file holding the
// whole (entity_id, date, adjusted_close) table.
type ParquetStore struct {
	Path string
}

// NewParquetStore creates a ParquetStore backed by the file at path.
func NewParquetStore(path string) *ParquetStore {
	return &ParquetStore{Path: path}
}

// PriceRecord is the on-disk Parquet schema for one price row.
type PriceRecord struct {
	EntityID string  `parquet:"entity_id"`
	Date     int64   `parquet:"date,timestamp(millisecond)"` // Unix ms, day precision
	AdjClose float64 `parquet:"adjusted_close"`
}

// ReadPrices reads the entire price table. A missing file yields an empty
// table; a file that cannot be decoded as the price schema is an error.
func (s *ParquetStore) ReadPrices(_ context.Context) ([]domain.PricePoint, error) {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return nil, nil
	}

	records, err := parquet.ReadFile[PriceRecord](s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading price table %s: %w", s.Path, err)
	}

	points := make([]domain.PricePoint, 0, len(records))
	for _, r := range records {
		points = append(points, domain.PricePoint{
			EntityID: r.EntityID,
			Date:     domain.Day(time.UnixMilli(r.Date).UTC()),
			AdjClose: r.AdjClose,
		})
	}
	return points, nil
}

// WritePrices replaces the price table with the given rows. The write is a
// full overwrite, not an append.
func (s *ParquetStore) WritePrices(_ context.Context, points []domain.PricePoint) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	records := make([]PriceRecord, 0, len(points))
	for _, p := range points {
		records = append(records, PriceRecord{
			EntityID: p.EntityID,
			Date:     domain.Day(p.Date).UnixMilli(),
			AdjClose: p.AdjClose,
		})
	}

	if err := parquet.WriteFile(s.Path, records); err != nil {
		return fmt.Errorf("writing price table %s: %w", s.Path, err)
	}
	return nil
}

// MergePrices deduplicates the concatenation of existing and incoming rows
// by (entity_id, date), keeping the last occurrence, so newly fetched rows
// win over stale ones for the same key. The result is sorted by entity then
// date.
func MergePrices(existing, incoming []domain.PricePoint) []domain.PricePoint {
	type key struct {
		entity string
		date   int64
	}
	seen := make(map[key]domain.PricePoint, len(existing)+len(incoming))
	for _, p := range existing {
		seen[key{p.EntityID, domain.Day(p.Date).UnixMilli()}] = p
	}
	for _, p := range incoming {
		seen[key{p.EntityID, domain.Day(p.Date).UnixMilli()}] = p
	}

	merged := make([]domain.PricePoint, 0, len(seen))
	for _, p := range seen {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].EntityID != merged[j].EntityID {
			return merged[i].EntityID < merged[j].EntityID
		}
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged
}

// MaxDate returns the maximum date across the entire table. ok is false for
// an empty table.
func MaxDate(points []domain.PricePoint) (maxDate time.Time, ok bool) {
	for _, p := range points {
		if !ok || p.Date.After(maxDate) {
			maxDate = p.Date
			ok = true
		}
	}
	return maxDate, ok
}

// MaxDatePerEntity returns the maximum date per entity id.
func MaxDatePerEntity(points []domain.PricePoint) map[string]time.Time {
	result := make(map[string]time.Time)
	for _, p := range points {
		if cur, ok := result[p.EntityID]; !ok || p.Date.After(cur) {
			result[p.EntityID] = p.Date
		}
	}
	return result
}

// EntitySeries extracts the chronologically ordered price series for one
// entity from an already-merged table.
func EntitySeries(points []domain.PricePoint, entityID string) []domain.PricePoint {
	var series []domain.PricePoint
	for _, p := range points {
		if p.EntityID == entityID {
			series = append(series, p)
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}
