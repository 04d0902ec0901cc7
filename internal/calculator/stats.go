package calculator

import (
	"errors"
	"math"
	"sort"

	"MASentinel/internal/model"
)

// Summary is the five-number summary of a set of closes, as drawn by a box plot.
type Summary struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
	Count  int
}

// Summarize computes the five-number summary with linear interpolation between ranks.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, errors.New("no values provided")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return Summary{
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Count:  len(sorted),
	}, nil
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// TotalVolume sums the traded volume over the bars.
func TotalVolume(bars []model.OHLCV) float64 {
	total := 0.0
	for _, b := range bars {
		total += b.Volume
	}
	return total
}
