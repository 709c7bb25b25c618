package strategy

import (
	"b3quant/internal/domain"
)

// Backtest simulates a single-asset portfolio over the signal series,
// starting from initialCapital.
//
// In the default (faithful) mode, holdings scale with the running sum of the
// ±2 crossover events, so exposure compounds across crossovers instead of
// being bounded at one unit. With clampExposure the net exposure is clamped
// to {-1, 0, +1}: each crossover moves the book to one unit in the signal's
// direction and no further.
func Backtest(signals []domain.SignalPoint, initialCapital float64, clampExposure bool) []domain.PortfolioPoint {
	portfolio := make([]domain.PortfolioPoint, len(signals))

	var (
		exposure  float64 // running net position count
		cashDelta float64 // cumulative cost of trades
		prevTotal float64
	)
	for t, s := range signals {
		trade := float64(s.Position)
		if clampExposure {
			target := exposure
			switch {
			case s.Position > 0:
				target = 1
			case s.Position < 0:
				target = -1
			}
			trade = target - exposure
		}
		exposure += trade
		cashDelta += trade * s.Price

		holdings := exposure * s.Price
		cash := initialCapital - cashDelta
		total := holdings + cash

		pp := domain.PortfolioPoint{
			Date:     s.Date,
			Price:    s.Price,
			Holdings: holdings,
			Cash:     cash,
			Total:    total,
		}
		if t > 0 && prevTotal != 0 {
			pp.Return = total/prevTotal - 1
			pp.HasReturn = true
		}
		portfolio[t] = pp
		prevTotal = total
	}
	return portfolio
}
