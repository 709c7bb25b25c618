package strategy

import (
	"sort"
	"time"

	"b3quant/internal/domain"
)

// BlendedPoint is one row of the consolidated equity curve.
type BlendedPoint struct {
	Date      time.Time
	Total     float64
	Return    float64
	HasReturn bool
}

// Consolidate equally weights the total-equity series of multiple portfolios
// into one blended curve. Alignment is an inner join on date: only dates
// present in every portfolio contribute, so curves of different lengths
// cannot silently misalign.
func Consolidate(portfolios map[string][]domain.PortfolioPoint) []BlendedPoint {
	if len(portfolios) == 0 {
		return nil
	}

	counts := make(map[time.Time]int)
	sums := make(map[time.Time]float64)
	for _, portfolio := range portfolios {
		for _, p := range portfolio {
			d := domain.Day(p.Date)
			counts[d]++
			sums[d] += p.Total
		}
	}

	var dates []time.Time
	for d, c := range counts {
		if c == len(portfolios) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	blended := make([]BlendedPoint, len(dates))
	var prevTotal float64
	for i, d := range dates {
		total := sums[d] / float64(len(portfolios))
		bp := BlendedPoint{Date: d, Total: total}
		if i > 0 && prevTotal != 0 {
			bp.Return = total/prevTotal - 1
			bp.HasReturn = true
		}
		blended[i] = bp
		prevTotal = total
	}
	return blended
}
