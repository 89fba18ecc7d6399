// Package update checks GitHub releases for a newer colourscan version.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/blang/semver/v4"
	"github.com/colourscan/colourscan/internal/config"
)

// Repo is the GitHub slug that releases are published under.
const Repo = "colourscan/colourscan"

const (
	stateFile = "update.json"
	maxAge    = 24 * time.Hour
)

// Release is what the checker remembers about the newest release.
type Release struct {
	CheckedAt time.Time `json:"checked_at"`
	Version   string    `json:"version"`
}

// Checker looks up the newest release and remembers the answer for a day.
type Checker struct {
	// URL is the releases/latest endpoint.
	URL string
	// Dir holds the remembered release. Empty disables it.
	Dir    string
	Client *http.Client
	Now    func() time.Time
}

// NewChecker returns a Checker for Repo that stores its state in the user
// config directory.
func NewChecker() *Checker {
	return &Checker{
		URL:    "https://api.github.com/repos/" + Repo + "/releases/latest",
		Dir:    config.Dir(),
		Client: &http.Client{Timeout: 2 * time.Second},
		Now:    time.Now,
	}
}

// Check reports the newest release and whether it is newer than current.
// It never touches the network in CI.
func (c *Checker) Check(ctx context.Context, current string) (string, bool, error) {
	if os.Getenv("CI") != "" {
		return "", false, nil
	}
	latest, err := c.Latest(ctx)
	if err != nil {
		return "", false, err
	}
	current = normalize(current)
	if latest == "" || current == "" {
		return latest, false, nil
	}
	return latest, Compare(latest, current) > 0, nil
}

// Latest returns the newest release version, asking GitHub only when the
// remembered answer is missing or stale.
func (c *Checker) Latest(ctx context.Context) (string, error) {
	rel, ok := c.load()
	if ok && c.Now().Sub(rel.CheckedAt) < maxAge && rel.Version != "" {
		return rel.Version, nil
	}
	v, err := c.fetch(ctx)
	if err != nil {
		// a stale answer beats none
		if ok && rel.Version != "" {
			return rel.Version, nil
		}
		return "", err
	}
	c.store(Release{CheckedAt: c.Now(), Version: v})
	return v, nil
}

func (c *Checker) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "colourscan-updater")
	req.Header.Set("Accept", "application/vnd.github+json")
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("latest release: unexpected status %s", resp.Status)
	}
	var body struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("latest release: %w", err)
	}
	if body.TagName != "" {
		return normalize(body.TagName), nil
	}
	return normalize(body.Name), nil
}

func (c *Checker) load() (Release, bool) {
	var rel Release
	if c.Dir == "" {
		return rel, false
	}
	b, err := os.ReadFile(filepath.Join(c.Dir, stateFile))
	if err != nil || json.Unmarshal(b, &rel) != nil {
		return Release{}, false
	}
	return rel, true
}

func (c *Checker) store(rel Release) {
	if c.Dir == "" {
		return
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return
	}
	b, _ := json.MarshalIndent(rel, "", "  ")
	_ = os.WriteFile(filepath.Join(c.Dir, stateFile), b, 0o644)
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// Compare orders two versions by semver precedence. Versions that do not
// parse sort below any valid version.
func Compare(a, b string) int {
	av, aerr := semver.ParseTolerant(a)
	bv, berr := semver.ParseTolerant(b)
	switch {
	case aerr != nil && berr != nil:
		return 0
	case aerr != nil:
		return -1
	case berr != nil:
		return 1
	}
	return av.Compare(bv)
}
