package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/colourscan/colourscan/internal/cache"
	"github.com/colourscan/colourscan/internal/escape"
	"github.com/colourscan/colourscan/internal/logging"
	"github.com/colourscan/colourscan/internal/metrics"
	"github.com/colourscan/colourscan/internal/savefile"
	"github.com/colourscan/colourscan/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the number of opening escapes reported when no
// threshold is configured.
const DefaultThreshold = 3

// Config controls which files are scanned and how.
type Config struct {
	Paths     []string
	Include   string // comma-separated globs for files found under directories
	Exclude   string
	Threshold int
	MaxBytes  int64 // skip files found under directories that are larger than this
	Limits    savefile.Limits
	Threads   int
	NoCache   bool
	CacheDir  string
	Progress  func()

	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// Result contains per-file results and basic scan statistics.
type Result struct {
	Files    []types.FileResult
	Duration time.Duration
}

// Matches returns the total number of matches across all files.
func (r Result) Matches() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Matches)
	}
	return n
}

// Scan loads every target in cfg and scans it. Files are processed in
// parallel but any read or decompression error aborts the whole scan and no
// results are returned. Results are ordered by path.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	if cfg.Threshold < 0 {
		return result, fmt.Errorf("threshold must not be negative, got %d", cfg.Threshold)
	}
	if len(cfg.Paths) == 0 {
		return result, errors.New("no save file specified")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	started := time.Now()
	targets, err := Targets(cfg)
	if err != nil {
		return result, err
	}
	logger.Debug("resolved targets", "count", len(targets), "threshold", cfg.Threshold)

	if cfg.CacheDir == "" {
		cfg.CacheDir = cache.DefaultDir()
	}
	var db cache.DB
	if !cfg.NoCache {
		db, _ = cache.Load(cfg.CacheDir)
	} else {
		db.Entries = map[string]cache.Entry{}
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	files := make([]types.FileResult, len(targets))
	updated := map[string]cache.Entry{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, p := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, entry, err := scanFile(p, cfg, db)
			if err != nil {
				return err
			}
			files[i] = fr
			logger.Info("scanned save file",
				"path", p,
				"size", fr.Size,
				"decompressed", fr.Decompressed,
				"matches", len(fr.Matches),
				"cached", fr.Cached,
			)

			mu.Lock()
			defer mu.Unlock()
			if !fr.Cached && entry.Key != "" {
				updated[p] = entry
			}
			if cfg.Progress != nil {
				cfg.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result.Files = files
	result.Duration = time.Since(started)

	if !cfg.NoCache && len(updated) > 0 {
		for k, v := range updated {
			db.Entries[k] = v
		}
		if err := cache.Save(cfg.CacheDir, db); err != nil {
			logger.Warn("could not write cache", "dir", cfg.CacheDir, "error", err)
		}
	}
	if cfg.Metrics != nil {
		for _, f := range files {
			cfg.Metrics.ObserveFile(f)
		}
		cfg.Metrics.SetScan(result.Duration.Seconds(), cfg.Threshold)
	}
	return result, nil
}

func scanFile(p string, cfg Config, db cache.DB) (types.FileResult, cache.Entry, error) {
	raw, err := savefile.ReadFile(p)
	if err != nil {
		return types.FileResult{}, cache.Entry{}, err
	}
	key := cache.Key(raw, cfg.Threshold, cfg.Limits)
	if !cfg.NoCache {
		if fr, ok := db.Lookup(p, key); ok {
			fr.Cached = true
			return fr, cache.Entry{}, nil
		}
	}

	data := raw
	if !cfg.Limits.Raw {
		data, err = savefile.Decompress(raw, cfg.Limits)
		if err != nil {
			return types.FileResult{}, cache.Entry{}, fmt.Errorf("%s: %w", p, err)
		}
	}

	matches, stats := escape.ScanWithStats(data, cfg.Threshold)
	fr := types.FileResult{
		Path:         p,
		Size:         int64(len(raw)),
		Decompressed: len(data),
		Threshold:    cfg.Threshold,
		Matches:      matches,
		Stats:        stats,
	}
	return fr, cache.Entry{Key: key, Result: fr}, nil
}
