package core

import (
	"context"

	"github.com/colourscan/colourscan/internal/engine"
	"github.com/colourscan/colourscan/internal/escape"
	"github.com/colourscan/colourscan/internal/savefile"
	"github.com/colourscan/colourscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config     = engine.Config
	Result     = engine.Result
	Limits     = savefile.Limits
	Match      = types.Match
	FileResult = types.FileResult
)

// DefaultThreshold is the minimum opening escape count used by the CLI.
const DefaultThreshold = engine.DefaultThreshold

var (
	ErrRead       = savefile.ErrRead
	ErrDecompress = savefile.ErrDecompress
)

// Scan finds runs in an already decompressed byte stream.
func Scan(data []byte, threshold int) []Match {
	return escape.Scan(data, threshold)
}

// ScanFile loads one gzip save file and scans it.
func ScanFile(path string, threshold int) (FileResult, error) {
	s, err := savefile.Load(path, Limits{})
	if err != nil {
		return FileResult{}, err
	}
	matches, stats := escape.ScanWithStats(s.Data, threshold)
	return FileResult{
		Path:         path,
		Size:         s.Size,
		Decompressed: len(s.Data),
		Threshold:    threshold,
		Matches:      matches,
		Stats:        stats,
	}, nil
}

// ScanPaths runs the full engine over files and directories.
func ScanPaths(ctx context.Context, cfg Config) (Result, error) {
	return engine.Scan(ctx, cfg)
}
