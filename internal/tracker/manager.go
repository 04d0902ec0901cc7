package tracker

import (
	"sync"

	"github.com/rs/zerolog/log"

	"MASentinel/internal/model"
)

// Manager remembers, per ticker, the last bar seen and the last crossover notified,
// so a rerun over the same data never alerts twice.
type Manager struct {
	mu       sync.Mutex
	state    *model.TrackerState
	filePath string
}

// NewManager creates a Manager, loading state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a copy of the alert state of ticker.
func (m *Manager) Get(ticker string) (model.AlertState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state.Tickers[ticker]
	if !ok {
		return model.AlertState{}, false
	}
	return *st, true
}

// Tickers returns the number of tracked tickers.
func (m *Manager) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Tickers)
}

// Observe records the latest bar of ticker and reports the side of a crossover not notified before.
// Once a ticker has history, a change of signal since the previous observed bar is a crossover
// even when the bar that crossed was never observed.
func (m *Manager) Observe(ticker string, pt model.AnnotatedPoint) (model.Side, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.state.Tickers[ticker]
	if !ok {
		st = &model.AlertState{}
		m.state.Tickers[ticker] = st
	}
	if !pt.Time.After(st.LastBarAt) && ok {
		return "", false
	}

	var (
		side    model.Side
		isEvent bool
	)
	if ok {
		side, isEvent = model.SideOf(model.Some(pt.Signal - st.LastSignal))
	} else {
		side, isEvent = model.SideOf(pt.Position)
	}
	st.LastBarAt = pt.Time
	st.LastSignal = pt.Signal
	if isEvent {
		st.LastEventAt = pt.Time
		st.LastEventSide = side
		st.Events++
	}

	if err := m.save(); err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("failed to save alert state")
	}
	return side, isEvent
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
