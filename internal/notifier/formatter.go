package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MASentinel/internal/model"
	"MASentinel/internal/recorder"
	"MASentinel/internal/report"
)

func title(s *report.Summary) string {
	if s.Company == "" {
		return html.EscapeString(s.Symbol)
	}
	return fmt.Sprintf("%s (%s)", html.EscapeString(s.Company), html.EscapeString(s.Symbol))
}

func avg(v model.NullFloat) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Value)
}

// FormatCrossoverAlert formats a new crossover on the latest bar.
func FormatCrossoverAlert(s *report.Summary, side model.Side) string {
	var b strings.Builder
	icon, verb := "🟢", "BUY"
	if side == model.SideSell {
		icon, verb = "🔴", "SELL"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s | %s\n\n", icon, verb, title(s), s.Last.Time.Format(time.DateOnly)))
	b.WriteString(fmt.Sprintf("Close: %.2f\n", s.Last.Close))
	b.WriteString(fmt.Sprintf("MA%d: %s | MA%d: %s\n", s.ShortWindow, avg(s.Last.ShortAvg), s.LongWindow, avg(s.Last.LongAvg)))
	if side == model.SideBuy {
		b.WriteString("Short average crossed above the long average.\n")
	} else {
		b.WriteString("Short average crossed back below the long average.\n")
	}
	return b.String()
}

// FormatSignalReport formats the current state of a ticker for an on-demand command.
func FormatSignalReport(s *report.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n", title(s)))
	b.WriteString(fmt.Sprintf("%s → %s (%d bars)\n\n", s.From.Format(time.DateOnly), s.To.Format(time.DateOnly), s.Points))
	b.WriteString(fmt.Sprintf("Close: %.2f (min %.2f / median %.2f / max %.2f)\n",
		s.Last.Close, s.Closes.Min, s.Closes.Median, s.Closes.Max))
	b.WriteString(fmt.Sprintf("MA%d: %s | MA%d: %s\n", s.ShortWindow, avg(s.Last.ShortAvg), s.LongWindow, avg(s.Last.LongAvg)))
	b.WriteString(fmt.Sprintf("Signal: %s\n", s.State()))
	b.WriteString(fmt.Sprintf("Events: %d buy / %d sell\n", len(s.Buys), len(s.Sells)))

	markers := s.Markers()
	if len(markers) > 5 {
		markers = markers[len(markers)-5:]
	}
	for _, m := range markers {
		b.WriteString(fmt.Sprintf("  %s %s @ %.2f\n", m.Time.Format(time.DateOnly), m.Side, m.Close))
	}
	return b.String()
}

// FormatEvents lists recorded crossover events.
func FormatEvents(symbol string, rows []recorder.EventRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No recorded crossovers for %s", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>History %s</b>\n\n", html.EscapeString(symbol)))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s %s @ %.2f\n", r.BarTime.Format(time.DateOnly), r.Side, r.Close))
	}
	return b.String()
}

// FormatList formats a titled list, truncated to limit entries.
func FormatList(heading string, items []string, limit int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> (%d)\n", html.EscapeString(heading), len(items)))
	for i, it := range items {
		if limit > 0 && i == limit {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(items)-limit))
			break
		}
		b.WriteString("• " + html.EscapeString(it) + "\n")
	}
	return b.String()
}
