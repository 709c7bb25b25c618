// Package marketdata defines the market-data provider interface and its
// Yahoo Finance and Alpaca implementations. Providers are treated as
// unreliable: callers must tolerate errors and empty series per symbol
// without aborting a whole run.
package marketdata

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned when the provider has no rows for the requested
// symbol and range. Callers treat it like any other fetch failure: skip the
// symbol and continue.
var ErrNoData = errors.New("marketdata: no data for symbol in range")

// Close is one daily adjusted-close observation.
type Close struct {
	Date     time.Time // day precision, UTC
	AdjClose float64
}

// Provider fetches a daily adjusted-close series for one symbol over
// [start, end].
type Provider interface {
	// DailyAdjCloses returns the series ordered by date. It returns
	// ErrNoData when the range holds no rows.
	DailyAdjCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error)
}
