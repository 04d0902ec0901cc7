package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"MASentinel/internal/model"
)

// WriteSeriesCSV writes one row per bar with every derived column. Undefined values are empty cells.
func WriteSeriesCSV(w io.Writer, a *model.AnnotatedSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "close", "volume", "short_avg", "long_avg", "signal", "position"}); err != nil {
		return err
	}
	for _, pt := range a.Points {
		if err := cw.Write([]string{
			pt.Time.Format(time.DateOnly),
			formatF(pt.Close), formatF(pt.Volume),
			formatNull(pt.ShortAvg), formatNull(pt.LongAvg),
			formatF(pt.Signal), formatNull(pt.Position),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkersCSV writes buy and sell markers in time order.
func WriteMarkersCSV(w io.Writer, markers []model.Marker) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "date", "side", "close", "level"}); err != nil {
		return err
	}
	for _, m := range markers {
		if err := cw.Write([]string{
			strconv.Itoa(m.Index), m.Time.Format(time.DateOnly), string(m.Side),
			formatF(m.Close), formatF(m.Level),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatNull(v model.NullFloat) string {
	if !v.Valid {
		return ""
	}
	return formatF(v.Value)
}
