package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"MASentinel/internal/model"
)

func point(day int, signal float64, pos model.NullFloat) model.AnnotatedPoint {
	return model.AnnotatedPoint{
		Time:     time.Date(2022, 3, day, 0, 0, 0, 0, time.UTC),
		Signal:   signal,
		Position: pos,
	}
}

func TestObserve_NotifiesOncePerBar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "alerts.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	buy := point(1, 1, model.Some(model.PositionBuy))
	side, ok := m.Observe("AAPL", buy)
	if !ok || side != model.SideBuy {
		t.Fatalf("expected new buy, got %q %v", side, ok)
	}
	if _, ok := m.Observe("AAPL", buy); ok {
		t.Error("same bar must not notify twice")
	}
	if _, ok := m.Observe("AAPL", point(2, 1, model.Some(0))); ok {
		t.Error("no position change must not notify")
	}
	side, ok = m.Observe("AAPL", point(3, 0, model.Some(model.PositionSell)))
	if !ok || side != model.SideSell {
		t.Errorf("expected new sell, got %q %v", side, ok)
	}

	st, found := m.Get("AAPL")
	if !found || st.Events != 2 || st.LastEventSide != model.SideSell || st.LastSignal != 0 {
		t.Errorf("unexpected state: %+v", st)
	}
}

func TestObserve_PersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	buy := point(1, 1, model.Some(model.PositionBuy))
	m.Observe("SAP.DE", buy)

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Tickers() != 1 {
		t.Fatalf("expected 1 tracked ticker, got %d", reloaded.Tickers())
	}
	if _, ok := reloaded.Observe("SAP.DE", buy); ok {
		t.Error("reloaded state must remember the notified bar")
	}
}

func TestObserve_UndefinedPosition(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "alerts.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Observe("X", point(1, 0, model.None)); ok {
		t.Error("undefined position is never an event")
	}
}

func TestObserve_CrossoverOnMissedBar(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "alerts.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Observe("AAPL", point(1, 0, model.Some(0))); ok {
		t.Fatal("flat first bar must not notify")
	}
	// day 2 crossed up but was never scanned
	side, ok := m.Observe("AAPL", point(3, 1, model.Some(0)))
	if !ok || side != model.SideBuy {
		t.Fatalf("expected buy from signal change, got %q %v", side, ok)
	}
	if _, ok := m.Observe("AAPL", point(4, 1, model.Some(0))); ok {
		t.Error("unchanged signal must not notify again")
	}
	st, _ := m.Get("AAPL")
	if st.Events != 1 || st.LastSignal != 1 {
		t.Errorf("unexpected state: %+v", st)
	}
}
