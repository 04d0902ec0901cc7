package tracker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"MASentinel/internal/model"
)

// LoadState reads the alert state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*model.TrackerState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.TrackerState{Tickers: map[string]*model.AlertState{}}, nil
		}
		return nil, err
	}
	var state model.TrackerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Tickers == nil {
		state.Tickers = map[string]*model.AlertState{}
	}
	return &state, nil
}

// SaveState writes the alert state to a JSON file, creating the parent directory.
func SaveState(filePath string, state *model.TrackerState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
