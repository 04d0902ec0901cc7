package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"MASentinel/internal/metrics"
	"MASentinel/internal/model"
)

// ErrInvalidRange is returned when the end date is before the start date.
var ErrInvalidRange = errors.New("end date is before start date")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, start, end), nil
}

func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%40-20)*0.002)
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

type cacheKey struct {
	symbol     string
	start, end string
}

// Collector loads price series through a Fetcher and caches each immutable result per query.
type Collector struct {
	Fetcher Fetcher

	mu    sync.Mutex
	cache map[cacheKey]*model.PriceSeries
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, cache: make(map[cacheKey]*model.PriceSeries)}
}

// Load returns the daily series of symbol between start and end, both inclusive.
// The result is sorted, de-duplicated and clipped to the range. Non-trading days are simply absent.
func (c *Collector) Load(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s .. %s", ErrInvalidRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	key := cacheKey{symbol: symbol, start: start.Format(time.DateOnly), end: end.Format(time.DateOnly)}

	c.mu.Lock()
	if s, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	bars, err := c.Fetcher.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		metrics.FetchErrorsTotal.WithLabelValues(c.Fetcher.Name()).Inc()
		return nil, fmt.Errorf("fetch %s history: %w", symbol, err)
	}
	series := &model.PriceSeries{
		Symbol:    symbol,
		Start:     start,
		End:       end,
		Bars:      normalize(clip(bars, start, end)),
		FetchedAt: time.Now(),
	}
	log.Debug().Str("symbol", symbol).Str("source", c.Fetcher.Name()).Int("bars", series.Len()).Msg("price series loaded")

	c.mu.Lock()
	c.cache[key] = series
	c.mu.Unlock()
	return series, nil
}

// Invalidate drops every cached series.
func (c *Collector) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[cacheKey]*model.PriceSeries)
	c.mu.Unlock()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// clip keeps bars whose day falls within [start, end].
func clip(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		day := truncateDay(b.Time)
		if day.Before(start) || day.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// normalize sorts bars by time and collapses duplicate timestamps, keeping the last one.
func normalize(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
