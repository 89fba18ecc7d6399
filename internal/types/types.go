package types

// Match describes a run of printable text that was wrapped in at least the
// requested number of opening escape markers.
type Match struct {
	Position int    `json:"position"` // offset of the first opening ESC
	Escapes  int    `json:"escapes"`  // ESC bytes in the opening run only
	Text     string `json:"text"`
}

// Stats summarizes how the runs in one byte stream were classified.
type Stats struct {
	Bytes          int  `json:"bytes"`
	Markers        int  `json:"markers"`
	Completed      int  `json:"completed"`
	Emitted        int  `json:"emitted"`
	BelowThreshold int  `json:"below_threshold"`
	InvalidText    int  `json:"invalid_text"`
	Unterminated   bool `json:"unterminated,omitempty"`
}

// FileResult holds the matches found in a single save file, along with the
// raw on-disk size and the number of decompressed bytes that were scanned.
type FileResult struct {
	Path         string  `json:"path"`
	Size         int64   `json:"size"`
	Decompressed int     `json:"decompressed"`
	Threshold    int     `json:"threshold"`
	Matches      []Match `json:"matches"`
	Stats        Stats   `json:"stats"`
	Cached       bool    `json:"cached,omitempty"`
}

// Finding flattens a match together with the file it came from.
type Finding struct {
	Path string `json:"path"`
	Match
}

// Flatten returns every match in results as a Finding, in result order.
func Flatten(results []FileResult) []Finding {
	var out []Finding
	for _, r := range results {
		for _, m := range r.Matches {
			out = append(out, Finding{Path: r.Path, Match: m})
		}
	}
	return out
}
