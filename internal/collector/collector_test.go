package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"MASentinel/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCollectorLoad_NormalizesAndClips(t *testing.T) {
	m := &MockFetcher{Bars: []model.OHLCV{
		{Time: day("2021-01-06"), Close: 3},
		{Time: day("2021-01-04"), Close: 1},
		{Time: day("2021-01-05"), Close: 2},
		{Time: day("2021-01-05"), Close: 2.5},
		{Time: day("2020-12-31"), Close: 0},
		{Time: day("2021-01-08"), Close: 9},
	}}
	c := NewCollector(m)
	s, err := c.Load(context.Background(), "AAPL", day("2021-01-01"), day("2021-01-07"))
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 2.5, 3}
	if s.Len() != len(want) {
		t.Fatalf("expected %d bars, got %d: %+v", len(want), s.Len(), s.Bars)
	}
	for i, w := range want {
		if s.Bars[i].Close != w {
			t.Errorf("bar %d: expected close %.1f, got %.1f", i, w, s.Bars[i].Close)
		}
	}
	for i := 1; i < s.Len(); i++ {
		if !s.Bars[i].Time.After(s.Bars[i-1].Time) {
			t.Errorf("bars not strictly increasing at %d", i)
		}
	}
}

func TestCollectorLoad_Caches(t *testing.T) {
	m := &MockFetcher{Price: 100}
	c := NewCollector(m)
	ctx := context.Background()
	a, err := c.Load(ctx, "SAP.DE", day("2021-01-01"), day("2021-03-01"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Load(ctx, "SAP.DE", day("2021-01-01"), day("2021-03-01"))
	if err != nil {
		t.Fatal(err)
	}
	if a != b || m.Calls != 1 {
		t.Errorf("expected cached series and one fetch, got %d fetches", m.Calls)
	}
	if _, err := c.Load(ctx, "SAP.DE", day("2021-01-01"), day("2021-04-01")); err != nil {
		t.Fatal(err)
	}
	if m.Calls != 2 {
		t.Errorf("a different range must fetch again, got %d fetches", m.Calls)
	}
	c.Invalidate()
	if _, err := c.Load(ctx, "SAP.DE", day("2021-01-01"), day("2021-03-01")); err != nil {
		t.Fatal(err)
	}
	if m.Calls != 3 {
		t.Errorf("expected fetch after invalidate, got %d fetches", m.Calls)
	}
}

func TestCollectorLoad_InvalidRange(t *testing.T) {
	c := NewCollector(&MockFetcher{Price: 1})
	_, err := c.Load(context.Background(), "X", day("2022-01-04"), day("2022-01-03"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCollectorLoad_SingleDay(t *testing.T) {
	c := NewCollector(&MockFetcher{Price: 50})
	s, err := c.Load(context.Background(), "X", day("2022-01-03"), day("2022-01-03"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || !s.Bars[0].Time.Equal(day("2022-01-03")) {
		t.Errorf("expected the one bar of 2022-01-03, got %+v", s.Bars)
	}
}

func TestCollectorLoad_FetchError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCollector(&MockFetcher{Err: boom})
	_, err := c.Load(context.Background(), "X", day("2021-01-01"), day("2021-02-01"))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped fetch error, got %v", err)
	}
}

func TestMockFetcher_SkipsWeekends(t *testing.T) {
	bars, _ := (&MockFetcher{Price: 10}).FetchHistory(context.Background(), "X", day("2021-01-01"), day("2021-01-10"))
	for _, b := range bars {
		if wd := b.Time.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("unexpected weekend bar %s", b.Time)
		}
	}
	if len(bars) != 6 {
		t.Errorf("expected 6 trading days, got %d", len(bars))
	}
}
