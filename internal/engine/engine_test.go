package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/colourscan/colourscan/internal/files"
	"github.com/colourscan/colourscan/internal/metrics"
	"github.com/colourscan/colourscan/internal/savefile"
	"github.com/colourscan/colourscan/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var redundant = []byte{'x', 0x1b, 0x1b, 0x1b, 'H', 'I', 0x1b, 0x1b, 0x1b, 0x00}

func mustWriteGzip(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	gz, err := savefile.Compress(data)
	require.NoError(t, err)
	return mustWrite(t, dir, name, gz)
}

func mustWrite(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestScan_SingleFile(t *testing.T) {
	dir := t.TempDir()
	p := mustWriteGzip(t, dir, "world.sav", redundant)

	res, err := Scan(context.Background(), Config{Paths: []string{p}, Threshold: 3, NoCache: true})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	f := res.Files[0]
	assert.Equal(t, p, f.Path)
	assert.Equal(t, len(redundant), f.Decompressed)
	assert.Equal(t, []types.Match{{Position: 1, Escapes: 3, Text: "HI"}}, f.Matches)
	assert.Equal(t, 1, res.Matches())
	assert.False(t, f.Cached)
}

func TestScan_DirectorySniffsGzip(t *testing.T) {
	dir := t.TempDir()
	mustWriteGzip(t, dir, "a.sav", redundant)
	mustWriteGzip(t, dir, "nested/b.dat", redundant)
	mustWrite(t, dir, "notes.txt", []byte("plain"))
	mustWriteGzip(t, dir, ".git/objects/c", redundant)

	got, err := Targets(Config{Paths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.sav"),
		filepath.Join(dir, "nested", "b.dat"),
	}, got)

	n, err := CountTargets(Config{Paths: []string{dir}, Limits: savefile.Limits{Raw: true}})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTargets_IncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	mustWriteGzip(t, dir, "one.sav.gz", redundant)
	mustWriteGzip(t, dir, "two.sav.gz", redundant)
	mustWriteGzip(t, dir, "backup/one.sav.gz", redundant)
	mustWriteGzip(t, dir, "other.bin", redundant)

	got, err := Targets(Config{Paths: []string{dir}, Include: "**/*.sav.gz", Exclude: "backup/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "one.sav.gz"),
		filepath.Join(dir, "two.sav.gz"),
	}, got)
}

func TestTargets_IgnoreFile(t *testing.T) {
	dir := t.TempDir()
	mustWriteGzip(t, dir, "keep.sav", redundant)
	mustWriteGzip(t, dir, "autosave.sav", redundant)
	mustWriteGzip(t, dir, "old/slot1.sav", redundant)
	require.NoError(t, files.AppendIgnore(dir, "autosave.sav"))
	require.NoError(t, files.AppendIgnore(dir, "old/**"))

	got, err := Targets(Config{Paths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "keep.sav")}, got)
}

func TestTargets_NestedIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	keep := mustWriteGzip(t, dir, "sub/keep.gz", redundant)
	skip := mustWriteGzip(t, dir, "sub/a.gz", redundant)
	other := mustWriteGzip(t, dir, "a.gz", redundant)

	// patterns are relative to the directory holding the ignore file
	sub, name := filepath.Split(skip)
	require.NoError(t, files.AppendIgnore(sub, name))

	got, err := Targets(Config{Paths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, []string{other, keep}, got)
}

func TestTargets_UnreadableDirFailsWalk(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced here")
	}
	dir := t.TempDir()
	mustWriteGzip(t, dir, "a.gz", redundant)
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	mustWriteGzip(t, locked, "b.gz", redundant)
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got, err := Targets(Config{Paths: []string{dir}})
	require.Error(t, err)
	assert.ErrorIs(t, err, savefile.ErrRead)
	assert.Nil(t, got)

	_, err = Scan(context.Background(), Config{Paths: []string{dir}, NoCache: true})
	assert.ErrorIs(t, err, savefile.ErrRead)
}

func TestTargets_MaxBytesAndDedup(t *testing.T) {
	dir := t.TempDir()
	small := mustWriteGzip(t, dir, "small.gz", []byte("x"))
	big := mustWrite(t, dir, "big.gz", append([]byte{0x1f, 0x8b}, make([]byte, 4096)...))

	got, err := Targets(Config{Paths: []string{dir, small}, MaxBytes: 1024})
	require.NoError(t, err)
	assert.Equal(t, []string{small}, got)

	// explicit paths bypass the size gate
	got, err = Targets(Config{Paths: []string{big}, MaxBytes: 1024})
	require.NoError(t, err)
	assert.Equal(t, []string{big}, got)
}

func TestScan_MissingPathIsReadError(t *testing.T) {
	_, err := Scan(context.Background(), Config{Paths: []string{filepath.Join(t.TempDir(), "nope")}, NoCache: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, savefile.ErrRead)
}

func TestScan_CorruptFileAbortsEverything(t *testing.T) {
	dir := t.TempDir()
	mustWriteGzip(t, dir, "good.gz", redundant)
	bad := mustWrite(t, dir, "bad.gz", []byte{0x1f, 0x8b, 0x08, 0x00, 0x01})

	res, err := Scan(context.Background(), Config{Paths: []string{dir}, Threshold: 3, NoCache: true, Threads: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, savefile.ErrDecompress)
	assert.Contains(t, err.Error(), bad)
	assert.Empty(t, res.Files)
}

func TestScan_RawMode(t *testing.T) {
	dir := t.TempDir()
	p := mustWrite(t, dir, "dump.bin", redundant)

	res, err := Scan(context.Background(), Config{Paths: []string{p}, Threshold: 3, NoCache: true, Limits: savefile.Limits{Raw: true}})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Len(t, res.Files[0].Matches, 1)
}

func TestScan_CacheHit(t *testing.T) {
	dir := t.TempDir()
	cacheDir := t.TempDir()
	p := mustWriteGzip(t, dir, "world.gz", redundant)
	cfg := Config{Paths: []string{p}, Threshold: 3, CacheDir: cacheDir}

	first, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	require.False(t, first.Files[0].Cached)

	second, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, second.Files[0].Cached)
	assert.Equal(t, first.Files[0].Matches, second.Files[0].Matches)

	// a different threshold is a different cache key
	cfg.Threshold = 4
	third, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, third.Files[0].Cached)
	assert.Empty(t, third.Files[0].Matches)
}

func TestScan_CachedFileStillHonoursDecompressLimit(t *testing.T) {
	dir := t.TempDir()
	cacheDir := t.TempDir()
	payload := bytes.Repeat([]byte{0x1b, 0x1b, 0x1b, 'o', 'k', 0x1b, 0x00}, 1000)
	p := mustWriteGzip(t, dir, "big.gz", payload)
	cfg := Config{Paths: []string{p}, Threshold: 3, CacheDir: cacheDir}

	first, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, first.Files[0].Matches, 1000)

	cfg.Limits.MaxDecompressedBytes = 10
	res, err := Scan(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, savefile.ErrDecompress)
	assert.Empty(t, res.Files)

	// a limit the file fits in is cached under its own key
	cfg.Limits.MaxDecompressedBytes = int64(len(payload))
	fits, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, fits.Files[0].Cached)
	assert.Len(t, fits.Files[0].Matches, 1000)
}

func TestScan_ProgressAndMetrics(t *testing.T) {
	dir := t.TempDir()
	mustWriteGzip(t, dir, "a.gz", redundant)
	mustWriteGzip(t, dir, "b.gz", redundant)

	calls := 0
	m := metrics.New()
	res, err := Scan(context.Background(), Config{
		Paths:     []string{dir},
		Threshold: 3,
		NoCache:   true,
		Progress:  func() { calls++ },
		Metrics:   m,
	})
	require.NoError(t, err)
	assert.Len(t, res.Files, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.FilesScanned))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.OutcomeEmitted)))
}

func TestScan_Validation(t *testing.T) {
	_, err := Scan(context.Background(), Config{Threshold: 3})
	assert.Error(t, err)

	_, err = Scan(context.Background(), Config{Paths: []string{"x"}, Threshold: -1})
	assert.Error(t, err)
}

func TestScan_Canceled(t *testing.T) {
	dir := t.TempDir()
	p := mustWriteGzip(t, dir, "a.gz", redundant)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, Config{Paths: []string{p}, NoCache: true})
	assert.ErrorIs(t, err, context.Canceled)
}
