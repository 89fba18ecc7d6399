package engine

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/colourscan/colourscan/internal/files"
	"github.com/colourscan/colourscan/internal/savefile"
)

// Targets expands cfg.Paths into the sorted, de-duplicated list of files to
// scan. Files named explicitly are always kept. Files found under a
// directory must pass the include/exclude globs and the MaxBytes gate; with
// no include globs only gzip files are picked up (or every file in raw mode).
func Targets(cfg Config) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range cfg.Paths {
		st, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", savefile.ErrRead, err)
		}
		if !st.IsDir() {
			add(root)
			continue
		}
		err = walkDir(root, cfg, add)
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

// CountTargets returns how many files Scan would process for cfg.
func CountTargets(cfg Config) (int, error) {
	t, err := Targets(cfg)
	return len(t), err
}

// walkDir adds every eligible file under root. Each directory may carry its
// own ignore file whose patterns are relative to that directory. An
// unreadable directory fails the walk.
func walkDir(root string, cfg Config, add func(string)) error {
	root = filepath.Clean(root)
	ignores := map[string][]string{}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %w", savefile.ErrRead, err)
		}
		if d.IsDir() {
			if p != root && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			patterns, err := files.LoadIgnore(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", filepath.Join(p, files.IgnoreFileName), err)
			}
			if len(patterns) > 0 {
				ignores[filepath.Clean(p)] = patterns
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		if !allowedByGlobs(rel, cfg.Include, cfg.Exclude) {
			return nil
		}
		if isIgnored(ignores, root, p) {
			return nil
		}
		info, _ := d.Info()
		if cfg.MaxBytes > 0 && info != nil && info.Size() > cfg.MaxBytes {
			return nil
		}
		if cfg.Include == "" && !cfg.Limits.Raw && !sniffGzip(p) {
			return nil
		}
		add(p)
		return nil
	})
}

// isIgnored checks p against the ignore patterns of every directory from
// p's parent up to root.
func isIgnored(ignores map[string][]string, root, p string) bool {
	if len(ignores) == 0 {
		return false
	}
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		if patterns := ignores[dir]; len(patterns) > 0 {
			rel, err := filepath.Rel(dir, p)
			if err == nil && matchAnyGlob(filepath.ToSlash(rel), patterns) {
				return true
			}
		}
		if dir == root || dir == filepath.Dir(dir) {
			return false
		}
	}
}

func sniffGzip(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()
	var hdr [2]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return false
	}
	return savefile.IsGzip(hdr[:])
}
