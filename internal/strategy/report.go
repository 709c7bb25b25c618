package strategy

import (
	"fmt"
	"math"

	"b3quant/internal/domain"
)

// tradingDaysPerYear is the annualization factor for daily series.
const tradingDaysPerYear = 252

// warmupSamples is the number of leading portfolio rows excluded from the
// summary.
const warmupSamples = 2

// ErrTooFewSamples is wrapped into the Summarize error when the portfolio is
// too short to report on after warm-up exclusion.
var errTooFewSamples = fmt.Errorf("fewer than %d samples after warm-up", 2)

// Summarize reduces a portfolio series to return/risk metrics. The first two
// samples are dropped as warm-up. SharpeRatio is NaN when the annualized
// volatility is exactly zero; the function never divides by zero.
func Summarize(portfolio []domain.PortfolioPoint) (domain.Report, error) {
	if len(portfolio) < warmupSamples+2 {
		return domain.Report{}, fmt.Errorf("summarizing portfolio of %d rows: %w", len(portfolio), errTooFewSamples)
	}
	kept := portfolio[warmupSamples:]

	n := len(kept)
	totalReturn := kept[n-1].Total/kept[0].Total - 1
	annualizedReturn := math.Pow(1+totalReturn, tradingDaysPerYear/float64(n)) - 1

	var returns []float64
	for _, p := range kept {
		if p.HasReturn {
			returns = append(returns, p.Return)
		}
	}
	annualizedVolatility := sampleStdev(returns) * math.Sqrt(tradingDaysPerYear)

	sharpe := math.NaN()
	if annualizedVolatility != 0 {
		sharpe = annualizedReturn / annualizedVolatility
	}

	return domain.Report{
		TotalReturn:          totalReturn,
		AnnualizedReturn:     annualizedReturn,
		AnnualizedVolatility: annualizedVolatility,
		SharpeRatio:          sharpe,
	}, nil
}

// sampleStdev is the sample standard deviation (n-1 denominator). It returns
// 0 for fewer than two values.
func sampleStdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// FormatPercent renders v as a percentage with two decimals.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatReport renders a report the way the job prints it, one metric per
// line.
func FormatReport(r domain.Report) string {
	sharpe := "nan"
	if !math.IsNaN(r.SharpeRatio) {
		sharpe = fmt.Sprintf("%.2f", r.SharpeRatio)
	}
	return fmt.Sprintf(
		"  Total Return: %s\n  Annualized Return: %s\n  Annualized Volatility: %s\n  Sharpe Ratio: %s",
		FormatPercent(r.TotalReturn),
		FormatPercent(r.AnnualizedReturn),
		FormatPercent(r.AnnualizedVolatility),
		sharpe,
	)
}
