// Package report renders annotated series for terminals and files.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"MASentinel/internal/calculator"
	"MASentinel/internal/model"
	"MASentinel/internal/strategy"
)

// Summary condenses an annotated series into what the dashboard used to show.
type Summary struct {
	Symbol      string
	Company     string
	ShortWindow int
	LongWindow  int
	From        time.Time
	To          time.Time
	Points      int
	Closes      calculator.Summary
	TotalVolume float64
	Last        model.AnnotatedPoint
	Buys        []model.Marker
	Sells       []model.Marker
}

// Summarize builds a Summary. The series must not be empty.
func Summarize(a *model.AnnotatedSeries, company string) (*Summary, error) {
	last, ok := a.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no bars", strategy.ErrInsufficientData, a.Symbol)
	}
	closes := make([]float64, len(a.Points))
	bars := make([]model.OHLCV, len(a.Points))
	for i, pt := range a.Points {
		closes[i] = pt.Close
		bars[i] = model.OHLCV{Time: pt.Time, Close: pt.Close, Volume: pt.Volume}
	}
	stats, err := calculator.Summarize(closes)
	if err != nil {
		return nil, err
	}
	buys, sells := strategy.Markers(a)
	return &Summary{
		Symbol:      a.Symbol,
		Company:     company,
		ShortWindow: a.ShortWindow,
		LongWindow:  a.LongWindow,
		From:        a.Points[0].Time,
		To:          last.Time,
		Points:      len(a.Points),
		Closes:      stats,
		TotalVolume: calculator.TotalVolume(bars),
		Last:        last,
		Buys:        buys,
		Sells:       sells,
	}, nil
}

// State describes the current signal in words.
func (s *Summary) State() string {
	switch {
	case !s.Last.LongAvg.Valid:
		return "warming up"
	case s.Last.Signal == 1:
		return "short above long (in position)"
	default:
		return "short at or below long (flat)"
	}
}

// Markers returns buys and sells merged in time order.
func (s *Summary) Markers() []model.Marker {
	all := append(append([]model.Marker(nil), s.Buys...), s.Sells...)
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })
	return all
}

// WriteText prints a plain-text report.
func WriteText(w io.Writer, s *Summary, maxMarkers int) error {
	var b strings.Builder
	title := s.Symbol
	if s.Company != "" {
		title = s.Company + " (" + s.Symbol + ")"
	}
	fmt.Fprintf(&b, "%s  %s .. %s  (%d bars)\n", title, s.From.Format(time.DateOnly), s.To.Format(time.DateOnly), s.Points)
	fmt.Fprintf(&b, "Close  min %.2f  q1 %.2f  median %.2f  q3 %.2f  max %.2f\n",
		s.Closes.Min, s.Closes.Q1, s.Closes.Median, s.Closes.Q3, s.Closes.Max)
	fmt.Fprintf(&b, "Volume total %.0f\n", s.TotalVolume)
	fmt.Fprintf(&b, "Last   close %.2f  MA%d %s  MA%d %s\n",
		s.Last.Close, s.ShortWindow, fmtNull(s.Last.ShortAvg), s.LongWindow, fmtNull(s.Last.LongAvg))
	fmt.Fprintf(&b, "Signal %s\n", s.State())
	fmt.Fprintf(&b, "Events %d buy / %d sell\n", len(s.Buys), len(s.Sells))

	markers := s.Markers()
	if maxMarkers > 0 && len(markers) > maxMarkers {
		markers = markers[len(markers)-maxMarkers:]
	}
	for _, m := range markers {
		fmt.Fprintf(&b, "  %s  %-4s close %.2f  MA%d %.2f\n", m.Time.Format(time.DateOnly), m.Side, m.Close, s.ShortWindow, m.Level)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func fmtNull(v model.NullFloat) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Value)
}
