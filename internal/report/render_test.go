package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/colourscan/colourscan/internal/types"
)

func sampleResults() []types.FileResult {
	return []types.FileResult{
		{
			Path:         "a.sav.gz",
			Size:         42,
			Decompressed: 100,
			Threshold:    3,
			Matches: []types.Match{
				{Position: 0, Escapes: 3, Text: "HI"},
				{Position: 20, Escapes: 4, Text: "say \"x\""},
			},
		},
		{Path: "b.sav.gz", Size: 10, Decompressed: 30, Threshold: 3},
	}
}

func TestPrintDebug_SingleFile(t *testing.T) {
	var buf bytes.Buffer
	PrintDebug(&buf, sampleResults()[:1])
	want := "File size: 42 bytes\n" +
		"Redundant colour escapes: [{position: 0, escapes: 3, text: \"HI\"}, {position: 20, escapes: 4, text: \"say \\\"x\\\"\"}]\n"
	if buf.String() != want {
		t.Fatalf("unexpected debug output:\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestPrintDebug_MultipleFilesHavePathHeaders(t *testing.T) {
	var buf bytes.Buffer
	PrintDebug(&buf, sampleResults())
	out := buf.String()
	if !strings.Contains(out, "a.sav.gz:\n") || !strings.Contains(out, "b.sav.gz:\n") {
		t.Fatalf("expected path headers; got: %q", out)
	}
	if !strings.Contains(out, "Redundant colour escapes: []") {
		t.Fatalf("expected empty list for file without matches; got: %q", out)
	}
}

func TestPrintText_NoMatches_ShowsFooter(t *testing.T) {
	var buf bytes.Buffer
	res := []types.FileResult{{Path: "x.gz", Decompressed: 5}}
	PrintText(&buf, res, PrintOptions{NoColor: true, Duration: 1200 * time.Millisecond, Threshold: 3})
	out := buf.String()
	if !strings.Contains(out, "No redundant escapes found") {
		t.Fatalf("expected friendly no-matches message; got: %q", out)
	}
	if !strings.Contains(out, "Files scanned: 1 (5 bytes decompressed)") {
		t.Fatalf("expected footer with files scanned; got: %q", out)
	}
	if !strings.Contains(out, "Scan duration: 1.20s") {
		t.Fatalf("expected duration; got: %q", out)
	}
}

func TestPrintText_WithMatches(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, sampleResults(), PrintOptions{NoColor: true, Threshold: 3})
	out := buf.String()
	if !strings.Contains(out, "Matches: 2") {
		t.Fatalf("expected matches header; got: %q", out)
	}
	if !strings.Contains(out, `"HI"`) || !strings.Contains(out, "x3") {
		t.Fatalf("expected match line; got: %q", out)
	}
	if strings.Contains(out, "b.sav.gz\n") {
		t.Fatalf("files without matches should not be listed; got: %q", out)
	}
}

func TestPrintTable_WithMatches(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleResults(), PrintOptions{NoColor: true})
	out := buf.String()
	for _, s := range []string{"a.sav.gz", "20", `"HI"`, "Matches: 2"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in table output; got: %q", s, out)
		}
	}
}

func TestWriteJSON_EmptyMatchesAreLists(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResults()); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	ms, ok := got[1]["matches"].([]any)
	if !ok || len(ms) != 0 {
		t.Fatalf("expected [] for file without matches; got %#v", got[1]["matches"])
	}
	first := got[0]["matches"].([]any)[0].(map[string]any)
	if first["position"].(float64) != 0 || first["escapes"].(float64) != 3 || first["text"] != "HI" {
		t.Fatalf("unexpected first match: %#v", first)
	}
}
