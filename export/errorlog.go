package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shelfgrab/shelfgrab/models"
)

// WriteErrorLog persists rejected candidates as a JSON array for offline
// inspection. The file is overwritten per run, not appended across runs.
// An empty entry list still produces a valid file containing "[]".
func WriteErrorLog(path string, entries []models.ErrorLogEntry) error {
	if entries == nil {
		entries = []models.ErrorLogEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal error log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadErrorLog loads a previously written error log.
func ReadErrorLog(path string) ([]models.ErrorLogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []models.ErrorLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}
