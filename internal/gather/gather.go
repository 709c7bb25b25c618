// Package gather implements the two data jobs: the listed-companies scrape
// and the incremental price update.
package gather

import (
	"context"
	"time"
)

// Gatherer is the interface for all data gathering jobs.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run executes the job once. It returns when the job is complete or the
	// context is cancelled.
	Run(ctx context.Context) error
}

// DateRange represents a time range for data fetching.
type DateRange struct {
	Start time.Time
	End   time.Time
}
