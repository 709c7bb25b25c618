package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"b3quant/internal/domain"
)

// Compile-time interface check.
var _ ParamsStore = (*SQLiteStore)(nil)

// SQLiteStore implements ParamsStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// schema migration, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	const schema = `
CREATE TABLE IF NOT EXISTS best_params (
	entity_id    TEXT PRIMARY KEY,
	symbol       TEXT NOT NULL,
	short_window INTEGER NOT NULL,
	long_window  INTEGER NOT NULL,
	sharpe       REAL NOT NULL,
	updated_at   TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating best_params: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBestParams inserts or updates the grid-search record for an entity.
func (s *SQLiteStore) SaveBestParams(ctx context.Context, params domain.BestParams) error {
	const query = `
INSERT INTO best_params (entity_id, symbol, short_window, long_window, sharpe, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(entity_id) DO UPDATE SET
	symbol = excluded.symbol,
	short_window = excluded.short_window,
	long_window = excluded.long_window,
	sharpe = excluded.sharpe,
	updated_at = excluded.updated_at;`

	_, err := s.db.ExecContext(ctx, query,
		params.EntityID, params.Symbol,
		params.ShortWindow, params.LongWindow, params.SharpeRatio,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving best params for %s: %w", params.EntityID, err)
	}
	return nil
}

// GetBestParams retrieves the record for one entity, or nil when no grid
// search has produced a result for it.
func (s *SQLiteStore) GetBestParams(ctx context.Context, entityID string) (*domain.BestParams, error) {
	const query = `
SELECT entity_id, symbol, short_window, long_window, sharpe
FROM best_params WHERE entity_id = ?;`

	var p domain.BestParams
	err := s.db.QueryRowContext(ctx, query, entityID).Scan(
		&p.EntityID, &p.Symbol, &p.ShortWindow, &p.LongWindow, &p.SharpeRatio,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading best params for %s: %w", entityID, err)
	}
	return &p, nil
}

// ListBestParams returns all records ordered by entity id.
func (s *SQLiteStore) ListBestParams(ctx context.Context) ([]domain.BestParams, error) {
	const query = `
SELECT entity_id, symbol, short_window, long_window, sharpe
FROM best_params ORDER BY entity_id;`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BestParams
	for rows.Next() {
		var p domain.BestParams
		if err := rows.Scan(&p.EntityID, &p.Symbol, &p.ShortWindow, &p.LongWindow, &p.SharpeRatio); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
