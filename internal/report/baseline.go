package report

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/colourscan/colourscan/internal/types"
)

// DefaultBaselineFile is where `baseline update` writes when no path is given.
const DefaultBaselineFile = "colourscan.baseline.json"

type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline records every match in results, replacing the file at path.
func SaveBaseline(path string, results []types.FileResult) error {
	b := Baseline{Items: map[string]bool{}}
	for _, r := range results {
		for _, m := range r.Matches {
			b.Items[Key(r.Path, m)] = true
		}
	}
	return b.Save(path)
}

func (b Baseline) Save(path string) error {
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// FilterNew returns copies of results that only keep matches absent from base.
func FilterNew(results []types.FileResult, base Baseline) []types.FileResult {
	out := make([]types.FileResult, len(results))
	for i, r := range results {
		var kept []types.Match
		for _, m := range r.Matches {
			if !base.Items[Key(r.Path, m)] {
				kept = append(kept, m)
			}
		}
		r.Matches = kept
		out[i] = r
	}
	return out
}

// Key identifies a match in a baseline.
func Key(path string, m types.Match) string {
	return path + "|" + strconv.Itoa(m.Position) + "|" + m.Text
}

// ShouldFail reports whether the scan should exit non-zero under failOn.
// "any" fails when at least one match remains; anything else never fails.
func ShouldFail(results []types.FileResult, failOn string) bool {
	if failOn != "any" {
		return false
	}
	for _, r := range results {
		if len(r.Matches) > 0 {
			return true
		}
	}
	return false
}
