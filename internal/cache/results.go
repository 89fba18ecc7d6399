package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/colourscan/colourscan/internal/types"
)

// ScanResults stores the results and metadata from the last scan.
type ScanResults struct {
	Results   []types.FileResult `json:"results"`
	Timestamp time.Time          `json:"timestamp"`
	Threshold int                `json:"threshold"`
	Count     int                `json:"count"`
}

func resultsPath(dir string) string {
	return filepath.Join(dir, ".colourscan_last_scan.json")
}

// SaveResults saves scan results to dir.
func SaveResults(dir string, threshold int, results []types.FileResult) error {
	count := 0
	for _, r := range results {
		count += len(r.Matches)
	}
	sr := ScanResults{
		Results:   results,
		Timestamp: time.Now(),
		Threshold: threshold,
		Count:     count,
	}
	b, err := json.MarshalIndent(sr, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(resultsPath(dir), b, 0o644)
}

// LoadResults loads the last scan results from dir.
func LoadResults(dir string) (ScanResults, error) {
	var results ScanResults
	f, err := os.ReadFile(resultsPath(dir))
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}

// DefaultDir returns the per-user cache directory for colourscan.
func DefaultDir() string {
	if base, err := os.UserCacheDir(); err == nil && base != "" {
		return filepath.Join(base, "colourscan")
	}
	return ".colourscan"
}
