package alertstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"CryptoPulse/internal/model"
)

// TickerState remembers the newest alert already delivered for one ticker.
type TickerState struct {
	LastAlert  time.Time    `json:"last_alert"`
	LastSignal model.Signal `json:"last_signal"`
	LastPrice  float64      `json:"last_price"`
	Delivered  int          `json:"delivered"`
}

// State is the persisted watch-mode state.
type State struct {
	Tickers   map[string]TickerState `json:"tickers"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// LoadState reads the state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Tickers: map[string]TickerState{}}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Tickers == nil {
		state.Tickers = map[string]TickerState{}
	}
	return &state, nil
}

// SaveState writes the state to a JSON file, creating its directory.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
