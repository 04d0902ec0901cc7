package calculator

import (
	"math"
	"testing"

	"MASentinel/internal/model"
)

// trailingMean averages the last window values directly.
func trailingMean(values []float64, window int) float64 {
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

func TestRollingSMA_DefinedCount(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	for w := 1; w <= len(values); w++ {
		out := RollingSMA(values, w)
		if len(out) != len(values) {
			t.Fatalf("window %d: expected length %d, got %d", w, len(values), len(out))
		}
		if got, want := CountDefined(out), len(values)-w+1; got != want {
			t.Errorf("window %d: expected %d defined values, got %d", w, want, got)
		}
		for i := range out {
			if i < w-1 {
				if out[i].Valid {
					t.Errorf("window %d index %d: expected undefined", w, i)
				}
				continue
			}
			want := trailingMean(values[:i+1], w)
			if math.Abs(out[i].Value-want) > 1e-9 {
				t.Errorf("window %d index %d: expected %.6f, got %.6f", w, i, want, out[i].Value)
			}
		}
	}
}

func TestRollingSMA_WindowLongerThanSeries(t *testing.T) {
	out := RollingSMA([]float64{1, 2, 3}, 4)
	if CountDefined(out) != 0 {
		t.Errorf("expected all undefined, got %v", out)
	}
}

func TestRollingSMA_NonPositiveWindow(t *testing.T) {
	if out := RollingSMA([]float64{1, 2}, 0); out != nil {
		t.Errorf("expected nil for window 0, got %v", out)
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{5, 1, 4, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if s.Min != 1 || s.Max != 5 || s.Median != 3 || s.Q1 != 2 || s.Q3 != 4 || s.Mean != 3 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if _, err := Summarize(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestTotalVolume(t *testing.T) {
	bars := []model.OHLCV{{Close: 10, Volume: 1}, {Close: 12, Volume: 2}, {Close: 9, Volume: 3}}
	if v := TotalVolume(bars); v != 6 {
		t.Errorf("expected volume 6, got %.0f", v)
	}
}

func TestRollingSMA_FlatWindowIsExact(t *testing.T) {
	values := []float64{101.37, 98.12, 107.83512569311121, 99.9, 104.4}
	flat := values[len(values)-1]
	for i := 0; i < 30; i++ {
		values = append(values, flat)
	}
	out := RollingSMA(values, 20)
	for i := 24; i < len(values); i++ {
		if out[i].Value != flat {
			t.Errorf("index %d: expected exactly %v, got %v", i, flat, out[i].Value)
		}
	}
}
