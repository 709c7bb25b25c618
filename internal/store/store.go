// Package store defines storage interfaces for the persisted price table,
// the company reference file, and grid-search results.
package store

import (
	"context"

	"b3quant/internal/domain"
)

// PriceStore persists and retrieves the price table. The table is read in
// full at the start of a price-update run and overwritten in full at the
// end; there is no transactional append.
type PriceStore interface {
	// ReadPrices returns the entire persisted table, or an empty slice when
	// no table exists yet. A table that exists but cannot be decoded is an
	// error: callers must fail fast rather than proceed on a corrupt table.
	ReadPrices(ctx context.Context) ([]domain.PricePoint, error)

	// WritePrices replaces the persisted table with the given rows.
	WritePrices(ctx context.Context, points []domain.PricePoint) error
}

// CompanyStore persists and retrieves the company reference file.
type CompanyStore interface {
	// ReadCompanies returns all companies in the reference file.
	ReadCompanies(ctx context.Context) ([]domain.Company, error)

	// WriteCompanies replaces the reference file with the given companies.
	WriteCompanies(ctx context.Context, companies []domain.Company) error
}

// ParamsStore persists best grid-search parameters per entity.
type ParamsStore interface {
	// SaveBestParams inserts or updates the record for the entity.
	SaveBestParams(ctx context.Context, params domain.BestParams) error

	// GetBestParams retrieves the record for one entity, or nil when absent.
	GetBestParams(ctx context.Context, entityID string) (*domain.BestParams, error)

	// ListBestParams returns all records ordered by entity id.
	ListBestParams(ctx context.Context) ([]domain.BestParams, error)
}
