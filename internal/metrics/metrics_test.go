package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colourscan/colourscan/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCollector(t *testing.T) {
	c := New()
	if c == nil || c.Registry() == nil {
		t.Fatal("expected non-nil collector")
	}
}

func TestObserveFile(t *testing.T) {
	c := New()
	c.ObserveFile(types.FileResult{
		Path:   "a.gz",
		Cached: true,
		Stats: types.Stats{
			Bytes:          100,
			Markers:        12,
			Completed:      4,
			Emitted:        2,
			BelowThreshold: 1,
			InvalidText:    1,
			Unterminated:   true,
		},
	})

	if got := testutil.ToFloat64(c.FilesScanned); got != 1 {
		t.Fatalf("files scanned = %v", got)
	}
	if got := testutil.ToFloat64(c.CacheHits); got != 1 {
		t.Fatalf("cache hits = %v", got)
	}
	if got := testutil.ToFloat64(c.BytesScanned); got != 100 {
		t.Fatalf("bytes = %v", got)
	}
	if got := testutil.ToFloat64(c.RunsTotal.WithLabelValues(OutcomeEmitted)); got != 2 {
		t.Fatalf("emitted = %v", got)
	}
	if got := testutil.ToFloat64(c.RunsTotal.WithLabelValues(OutcomeUnterminated)); got != 1 {
		t.Fatalf("unterminated = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	c := New()
	c.SetBuildInfo("1.2.3")
	c.SetScan(0.5, 3)
	c.ObserveFile(types.FileResult{Stats: types.Stats{Emitted: 1}})

	p := filepath.Join(t.TempDir(), "colourscan.prom")
	if err := c.WriteTextfile(p); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	body := string(b)
	for _, want := range []string{
		`colourscan_runs_total{outcome="emitted"} 1`,
		`colourscan_threshold 3`,
		`colourscan_info{version="1.2.3"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}
