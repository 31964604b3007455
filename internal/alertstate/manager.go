package alertstate

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"CryptoPulse/internal/alertlog"
	"CryptoPulse/internal/model"
)

// Manager tracks delivered alerts with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Get returns the stored state of ticker.
func (m *Manager) Get(ticker string) (TickerState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.state.Tickers[ticker]
	return ts, ok
}

// Pending returns the alerts newer than the last delivered one, oldest first.
// For a ticker seen for the first time only the most recent alert is pending,
// so starting the watcher does not replay the whole history.
func (m *Manager) Pending(ticker string, alerts []model.AlertEntry) []model.AlertEntry {
	if len(alerts) == 0 {
		return nil
	}
	m.mu.Lock()
	ts, ok := m.state.Tickers[ticker]
	m.mu.Unlock()

	if !ok {
		return alerts[len(alerts)-1:]
	}
	return alertlog.Since(alerts, ts.LastAlert)
}

// MarkDelivered advances the marker of ticker to entry and persists the state.
func (m *Manager) MarkDelivered(ticker string, entry model.AlertEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.state.Tickers[ticker]
	if !entry.Time.After(ts.LastAlert) && ts.Delivered > 0 {
		return
	}
	ts.LastAlert = entry.Time
	ts.LastSignal = entry.Signal
	ts.LastPrice = entry.Price
	ts.Delivered++
	m.state.Tickers[ticker] = ts

	if err := m.save(); err != nil {
		log.WithError(err).WithField("ticker", ticker).Error("failed to save alert state")
	}
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
