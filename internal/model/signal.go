package model

import "time"

// Side is the direction of a position change.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Position values produced by the crossover engine.
const (
	PositionBuy  = 1.0
	PositionSell = -1.0
)

// AnnotatedPoint is one bar of the price series with every derived value at that index.
type AnnotatedPoint struct {
	Index    int
	Time     time.Time
	Close    float64
	Volume   float64
	ShortAvg NullFloat
	LongAvg  NullFloat
	Signal   float64   // 1.0 when ShortAvg > LongAvg, else 0.0
	Position NullFloat // Signal[i] - Signal[i-1], undefined at index 0
}

// AnnotatedSeries is the engine output, aligned 1:1 with the input series.
type AnnotatedSeries struct {
	Symbol      string
	ShortWindow int
	LongWindow  int
	Points      []AnnotatedPoint
}

// Latest returns the last point, or false when the series is empty.
func (a *AnnotatedSeries) Latest() (AnnotatedPoint, bool) {
	if a == nil || len(a.Points) == 0 {
		return AnnotatedPoint{}, false
	}
	return a.Points[len(a.Points)-1], true
}

// Marker is a buy or sell event suitable for overlay plotting.
// Level is the short average at the event, where the marker is drawn.
type Marker struct {
	Index int
	Time  time.Time
	Side  Side
	Close float64
	Level float64
}

// SideOf maps a position value to a side. Zero and undefined positions have no side.
func SideOf(pos NullFloat) (Side, bool) {
	if !pos.Valid {
		return "", false
	}
	switch pos.Value {
	case PositionBuy:
		return SideBuy, true
	case PositionSell:
		return SideSell, true
	}
	return "", false
}

// AlertState tracks what has already been notified for one ticker.
type AlertState struct {
	LastSignal    float64   `json:"last_signal"`
	LastBarAt     time.Time `json:"last_bar_at"`
	LastEventAt   time.Time `json:"last_event_at"`
	LastEventSide Side      `json:"last_event_side"`
	Events        int       `json:"events"`
}

// TrackerState is the persisted alert state for all watched tickers.
type TrackerState struct {
	Tickers   map[string]*AlertState `json:"tickers"`
	UpdatedAt time.Time              `json:"updated_at"`
}
