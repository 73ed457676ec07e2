package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tiliavir/studylog/internal/model"
)

func activePath(base string) string {
	return filepath.Join(base, "active.json")
}

// LoadActive returns the running session, or nil when no timer is running.
func LoadActive(base string) (*model.ActiveSession, error) {
	path := activePath(base)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	var s model.ActiveSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt JSON in %s (delete it to reset the timer): %w", path, err)
	}
	return &s, nil
}

// SaveActive records the running session.
func SaveActive(base string, s model.ActiveSession) error {
	return writeJSON(activePath(base), s)
}

// ClearActive removes the running session, if any.
func ClearActive(base string) error {
	if err := os.Remove(activePath(base)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error clearing active session: %w", err)
	}
	return nil
}
