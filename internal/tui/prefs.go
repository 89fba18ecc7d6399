package tui

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/colourscan/colourscan/internal/config"
)

// Prefs holds viewer preferences that persist across sessions.
type Prefs struct {
	// QuoteText shows match text Go-quoted so that spaces and quotes are
	// unambiguous.
	QuoteText bool `json:"quote_text"`
}

func DefaultPrefs() Prefs {
	return Prefs{QuoteText: true}
}

func prefsPath() (string, error) {
	dir := config.Dir()
	if dir == "" {
		return "", errors.New("no config directory")
	}
	return filepath.Join(dir, "tui_prefs.json"), nil
}

// LoadPrefs loads preferences from disk, returning defaults if not found.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()
	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs)
	return prefs
}

func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
