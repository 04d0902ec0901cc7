package strategy

import (
	"fmt"

	"MASentinel/internal/calculator"
	"MASentinel/internal/model"
)

// Params are the two moving-average window lengths.
type Params struct {
	ShortWindow int
	LongWindow  int
}

// Validate checks both windows.
func (p Params) Validate() error {
	if err := ValidateWindow("short", p.ShortWindow); err != nil {
		return err
	}
	return ValidateWindow("long", p.LongWindow)
}

// Degenerate reports whether the short window is not shorter than the long one.
// The engine still computes in that case but crossovers lose their meaning.
func (p Params) Degenerate() bool {
	return p.ShortWindow >= p.LongWindow
}

// ComputeRollingAverage returns the trailing mean of the closes over window.
// A series shorter than window yields an all-undefined result rather than an error.
func ComputeRollingAverage(series *model.PriceSeries, window int) ([]model.NullFloat, error) {
	if err := ValidateWindow("rolling", window); err != nil {
		return nil, err
	}
	return calculator.RollingSMA(series.Closes(), window), nil
}

// ComputeSignal is 1.0 where short strictly exceeds long and both are defined, else 0.0.
func ComputeSignal(short, long []model.NullFloat) ([]float64, error) {
	if len(short) != len(long) {
		return nil, fmt.Errorf("%w: short has %d elements, long has %d", ErrMisalignedSeries, len(short), len(long))
	}
	signal := make([]float64, len(short))
	for i := range short {
		if short[i].Valid && long[i].Valid && short[i].Value > long[i].Value {
			signal[i] = 1.0
		}
	}
	return signal, nil
}

// ComputePosition returns the first difference of signal. Index 0 is undefined.
func ComputePosition(signal []float64) []model.NullFloat {
	pos := make([]model.NullFloat, len(signal))
	for i := 1; i < len(signal); i++ {
		pos[i] = model.Some(signal[i] - signal[i-1])
	}
	return pos
}

// Run annotates the series with both rolling averages, the crossover signal and position changes.
func Run(series *model.PriceSeries, p Params) (*model.AnnotatedSeries, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	shortAvg, err := ComputeRollingAverage(series, p.ShortWindow)
	if err != nil {
		return nil, err
	}
	longAvg, err := ComputeRollingAverage(series, p.LongWindow)
	if err != nil {
		return nil, err
	}
	signal, err := ComputeSignal(shortAvg, longAvg)
	if err != nil {
		return nil, err
	}
	position := ComputePosition(signal)

	out := &model.AnnotatedSeries{
		Symbol:      series.Symbol,
		ShortWindow: p.ShortWindow,
		LongWindow:  p.LongWindow,
		Points:      make([]model.AnnotatedPoint, series.Len()),
	}
	for i, b := range series.Bars {
		out.Points[i] = model.AnnotatedPoint{
			Index:    i,
			Time:     b.Time,
			Close:    b.Close,
			Volume:   b.Volume,
			ShortAvg: shortAvg[i],
			LongAvg:  longAvg[i],
			Signal:   signal[i],
			Position: position[i],
		}
	}
	return out, nil
}

// Markers extracts the buy (+1) and sell (-1) events of an annotated series.
func Markers(a *model.AnnotatedSeries) (buys, sells []model.Marker) {
	for _, pt := range a.Points {
		side, ok := model.SideOf(pt.Position)
		if !ok {
			continue
		}
		m := model.Marker{
			Index: pt.Index,
			Time:  pt.Time,
			Side:  side,
			Close: pt.Close,
			Level: pt.ShortAvg.Value,
		}
		if side == model.SideBuy {
			buys = append(buys, m)
		} else {
			sells = append(sells, m)
		}
	}
	return buys, sells
}

// RequireHistory returns ErrInsufficientData when the series cannot fill window.
func RequireHistory(series *model.PriceSeries, window int) error {
	if err := ValidateWindow("required", window); err != nil {
		return err
	}
	if series.Len() < window {
		return fmt.Errorf("%w: %s has %d bars, need %d", ErrInsufficientData, series.Symbol, series.Len(), window)
	}
	return nil
}
