package model

import "time"

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is the immutable price history loaded for one (symbol, start, end) query.
// Bars are ordered by time, strictly increasing.
type PriceSeries struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes extracts the closing prices in bar order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// NullFloat is a float that may be undefined, e.g. a rolling mean during warmup.
type NullFloat struct {
	Value float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

// None is the undefined value.
var None = NullFloat{}
