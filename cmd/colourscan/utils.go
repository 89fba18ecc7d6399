package colourscan

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/colourscan/colourscan/internal/cache"
	"github.com/colourscan/colourscan/internal/config"
	"github.com/colourscan/colourscan/internal/engine"
	"github.com/colourscan/colourscan/internal/logging"
	"github.com/colourscan/colourscan/internal/update"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// settings is the merged view of CLI flags, the local config and the global
// config, in that order of precedence.
type settings struct {
	local, global config.FileConfig
}

func loadSettings() (settings, error) {
	var s settings
	var err error
	if flagConfig != "" {
		if s.local, err = config.LoadFile(flagConfig); err != nil {
			return s, err
		}
	} else {
		wd, _ := os.Getwd()
		if s.local, err = config.LoadLocal(wd); err != nil && !errors.Is(err, config.ErrNotFound) {
			return s, err
		}
	}
	if s.global, err = config.LoadGlobal(); err != nil && !errors.Is(err, config.ErrNotFound) {
		return s, err
	}
	return s, nil
}

// threshold honours an explicit --escape-pairs, including zero, before
// falling back to config files.
func (s settings) threshold(cmd *cobra.Command) (int, error) {
	v := flagEscapePairs
	if !cmd.Flags().Changed("escape-pairs") {
		switch {
		case s.local.EscapePairs != nil:
			v = *s.local.EscapePairs
		case s.global.EscapePairs != nil:
			v = *s.global.EscapePairs
		}
	}
	if v < 0 {
		return 0, fmt.Errorf("--escape-pairs must not be negative, got %d", v)
	}
	return v, nil
}

func (s settings) format() (string, error) {
	var f string
	switch {
	case flagSARIF:
		f = "sarif"
	case flagJSON:
		f = "json"
	default:
		f = pickString(flagFormat, s.local.Format, s.global.Format)
	}
	if f == "" {
		f = "debug"
	}
	if !config.ValidFormat(f) {
		return "", fmt.Errorf("unknown format %q", f)
	}
	return f, nil
}

func (s settings) cacheDir() string {
	if d := pickString(flagCacheDir, s.local.CacheDir, s.global.CacheDir); d != "" {
		return d
	}
	return cache.DefaultDir()
}

func (s settings) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(logging.LogConfig{
		Level:  pickString(flagLogLevel, strPtr(s.local.GetLogLevel()), strPtr(s.global.GetLogLevel())),
		Format: pickString(flagLogFormat, strPtr(s.local.GetLogFormat()), strPtr(s.global.GetLogFormat())),
		Output: cmd.ErrOrStderr(),
	})
}

func (s settings) noColor() bool {
	if pickBool(flagNoColor, s.local.NoColor, s.global.NoColor) {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// targets combines --save-file with positional paths.
func targets(args []string) []string {
	var paths []string
	if flagSaveFile != "" {
		paths = append(paths, flagSaveFile)
	}
	return append(paths, args...)
}

// engineConfig builds the engine configuration shared by scan and
// baseline update.
func (s settings) engineConfig(cmd *cobra.Command, args []string) (engine.Config, error) {
	th, err := s.threshold(cmd)
	if err != nil {
		return engine.Config{}, err
	}
	cfg := engine.Config{
		Paths:     targets(args),
		Include:   pickString(flagInclude, s.local.Include, s.global.Include),
		Exclude:   pickString(flagExclude, s.local.Exclude, s.global.Exclude),
		Threshold: th,
		MaxBytes:  pickInt64(flagMaxBytes, s.local.MaxBytes, s.global.MaxBytes),
		Threads:   pickInt(flagThreads, s.local.Threads, s.global.Threads),
		NoCache:   pickBool(flagNoCache, s.local.NoCache, s.global.NoCache),
		CacheDir:  s.cacheDir(),
		Logger:    s.logger(cmd),
	}
	cfg.Limits.MaxDecompressedBytes = pickInt64(flagMaxDecompressed, s.local.MaxDecompressedBytes, s.global.MaxDecompressedBytes)
	cfg.Limits.Raw = pickBool(flagRaw, s.local.Raw, s.global.Raw)
	if len(cfg.Paths) == 0 {
		return cfg, errors.New("no save file specified (use --save-file or pass paths)")
	}
	return cfg, nil
}

func checkForUpdate(cmd *cobra.Command) {
	if flagNoUpdateCheck {
		return
	}
	if latest, newer, _ := update.NewChecker().Check(cmd.Context(), version); newer && latest != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "(new version available: v%s)  run 'colourscan update' to upgrade\n", latest)
	}
}

func selfUpdate() (string, error) {
	v := version
	if info, ok := debug.ReadBuildInfo(); ok && v == "" {
		v = info.Main.Version
	}
	ver, err := semver.ParseTolerant(v)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	// selfupdate still speaks the pre-module semver API
	latest, err := selfupdate.UpdateSelf(semver3.MustParse(ver.String()), update.Repo)
	if err != nil {
		return "", err
	}
	return latest.Version.String(), nil
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
