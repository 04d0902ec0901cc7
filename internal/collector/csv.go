package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"MASentinel/internal/model"
)

// CSVFetcher reads daily history from <Dir>/<SYMBOL>.csv files in the Yahoo download layout
// (Date,Open,High,Low,Close,Adj Close,Volume). Only Date and Close are required.
type CSVFetcher struct {
	Dir string
}

func NewCSVFetcher(dir string) *CSVFetcher { return &CSVFetcher{Dir: dir} }

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchHistory(_ context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	path := filepath.Join(f.Dir, symbol+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	bars, err := ReadBarsCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip(bars, start, end), nil
}

// ReadBarsCSV parses bars from a CSV stream with a header row. Rows whose close is
// empty or "null" are skipped.
func ReadBarsCSV(r io.Reader) ([]model.OHLCV, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("missing date column")
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, fmt.Errorf("missing close column")
	}

	var bars []model.OHLCV
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		raw := field(rec, closeCol)
		if raw == "" || strings.EqualFold(raw, "null") {
			continue
		}
		ts, err := time.Parse(time.DateOnly, field(rec, dateCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date: %w", line, err)
		}
		c, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad close: %w", line, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   optionalFloat(rec, cols, "open"),
			High:   optionalFloat(rec, cols, "high"),
			Low:    optionalFloat(rec, cols, "low"),
			Close:  c,
			Volume: optionalFloat(rec, cols, "volume"),
		})
	}
	return bars, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func optionalFloat(rec []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(field(rec, i), 64)
	if err != nil {
		return 0
	}
	return v
}

// WriteBarsCSV writes bars in the layout ReadBarsCSV accepts.
func WriteBarsCSV(w io.Writer, bars []model.OHLCV) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		if err := cw.Write([]string{
			b.Time.Format(time.DateOnly),
			formatF(b.Open), formatF(b.High), formatF(b.Low), formatF(b.Close), formatF(b.Volume),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
