package strategy

import (
	"math"
	"testing"
	"time"

	"b3quant/internal/domain"
)

// series builds a dated price series from raw closes, one trading day apart.
func series(closes ...float64) []domain.PricePoint {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.PricePoint{EntityID: "T", Date: base.AddDate(0, 0, i), AdjClose: c}
	}
	return points
}

func TestComputeSignalsLengthAndPositions(t *testing.T) {
	prices := series(10, 11, 9, 14, 8, 15, 16, 12, 11, 13, 17, 18)
	signals := ComputeSignals(prices, 3, 5)

	if len(signals) != len(prices) {
		t.Fatalf("output length %d != input length %d", len(signals), len(prices))
	}
	if signals[0].Position != 0 {
		t.Errorf("position[0] = %d, want 0 (no look-ahead)", signals[0].Position)
	}
	for i := 1; i < len(signals); i++ {
		changed := signals[i].Signal != signals[i-1].Signal
		nonzero := signals[i].Position != 0
		if changed != nonzero {
			t.Errorf("t=%d: signal change=%v but position=%d", i, changed, signals[i].Position)
		}
		if nonzero && signals[i].Position != 2 && signals[i].Position != -2 {
			t.Errorf("t=%d: position = %d, want ±2", i, signals[i].Position)
		}
	}
}

func TestComputeSignalsTrailingMeanNoLeadingGap(t *testing.T) {
	prices := series(10, 20, 30)
	signals := ComputeSignals(prices, 2, 3)

	// With fewer samples than the window, the mean uses what exists.
	if signals[0].ShortAvg != 10 || signals[0].LongAvg != 10 {
		t.Errorf("t=0 averages = (%v, %v), want (10, 10)", signals[0].ShortAvg, signals[0].LongAvg)
	}
	if signals[1].ShortAvg != 15 || signals[1].LongAvg != 15 {
		t.Errorf("t=1 averages = (%v, %v), want (15, 15)", signals[1].ShortAvg, signals[1].LongAvg)
	}
	if signals[2].ShortAvg != 25 || signals[2].LongAvg != 20 {
		t.Errorf("t=2 averages = (%v, %v), want (25, 20)", signals[2].ShortAvg, signals[2].LongAvg)
	}
}

func TestComputeSignalsTwoStateNoNeutralBand(t *testing.T) {
	// Equal averages emit -1, never 0.
	signals := ComputeSignals(series(10, 10, 10), 2, 3)
	for i, s := range signals {
		if s.Signal != -1 {
			t.Errorf("t=%d: signal = %d, want -1 when short <= long", i, s.Signal)
		}
	}
}

func TestComputeSignalsPriceJumpCrossover(t *testing.T) {
	prices := series(10, 10, 10, 10, 10, 12, 12, 12, 12, 12)
	signals := ComputeSignals(prices, 2, 4)

	// The short average first exceeds the long average at the jump (t=5):
	// short = (10+12)/2 = 11, long = (10+10+10+12)/4 = 10.5.
	var bullish []int
	for i, s := range signals {
		if s.Position == 2 {
			bullish = append(bullish, i)
		}
	}
	if len(bullish) != 1 || bullish[0] != 5 {
		t.Fatalf("bullish crossovers at %v, want exactly one at index 5", bullish)
	}

	// Once both windows are saturated at 12 the averages tie again, and the
	// two-state signal drops back to -1 at t=8.
	if signals[8].Position != -2 {
		t.Errorf("position[8] = %d, want -2 when averages tie", signals[8].Position)
	}
}

func TestBacktestFaithfulMode(t *testing.T) {
	prices := series(10, 10, 10, 10, 12, 13)
	signals := ComputeSignals(prices, 2, 4)
	portfolio := Backtest(signals, 100000, false)

	if len(portfolio) != len(signals) {
		t.Fatalf("portfolio length %d, want %d", len(portfolio), len(signals))
	}

	// The bullish crossover at t=4 opens two units (position +2).
	if portfolio[4].Holdings != 24 {
		t.Errorf("holdings[4] = %v, want 24 (2 units at 12)", portfolio[4].Holdings)
	}
	if portfolio[4].Cash != 100000-24 {
		t.Errorf("cash[4] = %v, want %v", portfolio[4].Cash, 100000-24)
	}
	if portfolio[4].Total != 100000 {
		t.Errorf("total[4] = %v, want 100000 (flat at trade time)", portfolio[4].Total)
	}

	// Next day the two units appreciate by 1 each.
	if portfolio[5].Total != 100002 {
		t.Errorf("total[5] = %v, want 100002", portfolio[5].Total)
	}
	wantReturn := 100002.0/100000.0 - 1
	if !portfolio[5].HasReturn || math.Abs(portfolio[5].Return-wantReturn) > 1e-12 {
		t.Errorf("return[5] = (%v, %v), want (%v, true)", portfolio[5].Return, portfolio[5].HasReturn, wantReturn)
	}

	if portfolio[0].HasReturn {
		t.Error("return[0] must be undefined")
	}
}

func TestBacktestClampedMode(t *testing.T) {
	prices := series(10, 10, 10, 10, 12, 13)
	signals := ComputeSignals(prices, 2, 4)
	portfolio := Backtest(signals, 100000, true)

	// Clamped exposure holds one unit, not two.
	if portfolio[4].Holdings != 12 {
		t.Errorf("holdings[4] = %v, want 12 (1 unit at 12)", portfolio[4].Holdings)
	}
	if portfolio[5].Total != 100001 {
		t.Errorf("total[5] = %v, want 100001", portfolio[5].Total)
	}
}

func TestBacktestClampedExposureBounds(t *testing.T) {
	// Alternate crossovers repeatedly; clamped exposure must stay in
	// {-1, 0, +1} whatever the crossover history.
	prices := series(10, 10, 10, 10, 12, 12, 9, 9, 14, 14, 8, 8, 15, 15)
	signals := ComputeSignals(prices, 2, 4)
	portfolio := Backtest(signals, 100000, true)

	for i, p := range portfolio {
		if p.Price == 0 {
			continue
		}
		units := p.Holdings / p.Price
		if math.Abs(units) > 1+1e-9 {
			t.Errorf("t=%d: clamped exposure = %v units, want |units| <= 1", i, units)
		}
	}
}
