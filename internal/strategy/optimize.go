package strategy

import (
	"math"

	"b3quant/internal/domain"
)

// GridSearch exhaustively evaluates every (short, long) pair from the two
// ranges on one ticker's price series and returns the pair with the
// strictly greatest Sharpe ratio. Pairs with short >= long are excluded
// from the search space. The comparison is strict, so the first pair seen
// wins ties, and a NaN Sharpe (zero volatility) never improves on the
// running best.
//
// ok is false when no valid pair produced an improving Sharpe; callers must
// treat that as "no parameters found" rather than dereference a best that
// never existed.
func GridSearch(prices []domain.PricePoint, shortRange, longRange []int, initialCapital float64, clampExposure bool) (best domain.BestParams, ok bool) {
	bestSharpe := math.Inf(-1)

	for _, short := range shortRange {
		for _, long := range longRange {
			if short >= long {
				continue
			}

			signals := ComputeSignals(prices, short, long)
			portfolio := Backtest(signals, initialCapital, clampExposure)
			report, err := Summarize(portfolio)
			if err != nil {
				continue // series too short for this evaluation
			}

			if report.SharpeRatio > bestSharpe {
				bestSharpe = report.SharpeRatio
				best = domain.BestParams{
					ShortWindow: short,
					LongWindow:  long,
					SharpeRatio: report.SharpeRatio,
				}
				ok = true
			}
		}
	}
	return best, ok
}
