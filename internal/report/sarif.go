package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/colourscan/colourscan/internal/types"
)

// RuleID identifies redundant escape results in SARIF output.
const RuleID = "redundant-colour-escape"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

// byte offsets refer to the decompressed stream
type sarifRegion struct {
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
}

// WriteSARIF writes matches as SARIF 2.1.0 to the provided writer.
func WriteSARIF(w io.Writer, results []types.FileResult, version string) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    "colourscan",
			Version: version,
			Rules: []sarifRule{{
				ID:               RuleID,
				ShortDescription: sarifMessage{Text: "Text wrapped in redundant colour escapes"},
			}},
		}},
		Results: []sarifResult{},
	}
	threshold := 0
	for _, r := range results {
		threshold = r.Threshold
		for _, m := range r.Matches {
			run.Results = append(run.Results, sarifResult{
				RuleID:  RuleID,
				Level:   "warning",
				Message: sarifMessage{Text: fmt.Sprintf("%q is preceded by %d escapes", m.Text, m.Escapes)},
				Locations: []sarifLoc{{
					PhysicalLocation: sarifPhys{
						ArtifactLocation: sarifArt{URI: r.Path},
						// the opening run is Escapes contiguous ESC bytes followed by the text
						Region: sarifRegion{ByteOffset: m.Position, ByteLength: m.Escapes + len(m.Text)},
					},
				}},
			})
		}
	}
	run.Properties = map[string]any{"threshold": threshold, "files": len(results)}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
