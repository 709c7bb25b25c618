// Package strategy implements the moving-average momentum pipeline: signal
// generation, backtesting, performance reporting, grid-search optimization,
// and equal-weight consolidation of per-ticker equity curves.
package strategy

import (
	"b3quant/internal/domain"
)

// ComputeSignals derives the signal series for one ticker from its ordered
// price series and two window lengths. Averages are trailing means that use
// all available samples while fewer than the window exist, so there is no
// leading gap. Signal is +1 when the short average is strictly above the
// long average and -1 otherwise; position is the first difference of signal
// and 0 at the first sample.
//
// Window validity (short < long) is the caller's responsibility; the grid
// search rejects degenerate pairs before calling.
func ComputeSignals(prices []domain.PricePoint, shortWindow, longWindow int) []domain.SignalPoint {
	signals := make([]domain.SignalPoint, len(prices))

	// Prefix sums make each trailing mean O(1).
	prefix := make([]float64, len(prices)+1)
	for i, p := range prices {
		prefix[i+1] = prefix[i] + p.AdjClose
	}
	trailingMean := func(t, window int) float64 {
		lo := t - window + 1
		if lo < 0 {
			lo = 0
		}
		return (prefix[t+1] - prefix[lo]) / float64(t+1-lo)
	}

	prevSignal := 0
	for t, p := range prices {
		shortAvg := trailingMean(t, shortWindow)
		longAvg := trailingMean(t, longWindow)

		signal := -1
		if shortAvg > longAvg {
			signal = 1
		}

		position := 0
		if t > 0 {
			position = signal - prevSignal
		}

		signals[t] = domain.SignalPoint{
			Date:     p.Date,
			Price:    p.AdjClose,
			ShortAvg: shortAvg,
			LongAvg:  longAvg,
			Signal:   signal,
			Position: position,
		}
		prevSignal = signal
	}
	return signals
}
