package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, tag string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_ = json.NewEncoder(w).Encode(map[string]string{"tag_name": tag})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testChecker(url, dir string, now time.Time) *Checker {
	return &Checker{URL: url, Dir: dir, Client: http.DefaultClient, Now: func() time.Time { return now }}
}

func TestCheck_SkippedInCI(t *testing.T) {
	var hits int32
	srv := releaseServer(t, "v9.9.9", &hits)
	t.Setenv("CI", "1")

	latest, newer, err := testChecker(srv.URL, t.TempDir(), time.Now()).Check(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.False(t, newer)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNormalizeAndCompare(t *testing.T) {
	assert.Equal(t, "1.2.3", normalize(" v1.2.3 "))
	assert.Zero(t, Compare("1.2.3", "1.2.3"))
	assert.Positive(t, Compare("1.3.0", "1.2.9"))
	assert.Negative(t, Compare("1.2.0", "1.2.1"))
	assert.Positive(t, Compare("1.2.0", "1.2.0-rc.1"), "release sorts above prerelease")
	assert.Positive(t, Compare("1.0", "garbage"), "valid version sorts above garbage")
}

func TestCheck_UsesFreshState(t *testing.T) {
	t.Setenv("CI", "")
	var hits int32
	srv := releaseServer(t, "v9.9.9", &hits)
	dir := t.TempDir()
	now := time.Now()
	b, err := json.Marshal(Release{CheckedAt: now.Add(-time.Hour), Version: "1.2.3"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFile), b, 0o644))

	latest, newer, err := testChecker(srv.URL, dir, now).Check(context.Background(), "1.2.2")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", latest)
	assert.True(t, newer)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestCheck_FetchesAndStoresWhenStale(t *testing.T) {
	t.Setenv("CI", "")
	var hits int32
	srv := releaseServer(t, "v9.9.9", &hits)
	dir := t.TempDir()
	now := time.Now()
	b, err := json.Marshal(Release{CheckedAt: now.Add(-2 * maxAge), Version: "1.0.0"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFile), b, 0o644))

	latest, newer, err := testChecker(srv.URL, dir, now).Check(context.Background(), "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", latest)
	assert.True(t, newer)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	raw, err := os.ReadFile(filepath.Join(dir, stateFile))
	require.NoError(t, err)
	var rel Release
	require.NoError(t, json.Unmarshal(raw, &rel))
	assert.Equal(t, "9.9.9", rel.Version)
}

func TestLatest_FallsBackToStaleStateOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()
	dir := t.TempDir()
	now := time.Now()

	c := testChecker(srv.URL, dir, now)
	_, err := c.Latest(context.Background())
	assert.Error(t, err)

	c.store(Release{CheckedAt: now.Add(-2 * maxAge), Version: "2.0.0"})
	v, err := c.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", v)
}

func TestNewChecker_UsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "colourscan"), NewChecker().Dir)
}
