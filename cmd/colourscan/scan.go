package colourscan

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/colourscan/colourscan/internal/audit"
	"github.com/colourscan/colourscan/internal/cache"
	"github.com/colourscan/colourscan/internal/config"
	"github.com/colourscan/colourscan/internal/engine"
	"github.com/colourscan/colourscan/internal/metrics"
	"github.com/colourscan/colourscan/internal/report"
	"github.com/colourscan/colourscan/internal/tui"
	"github.com/colourscan/colourscan/internal/types"
	"github.com/spf13/cobra"
)

var (
	flagInclude         string
	flagExclude         string
	flagMaxBytes        int64
	flagMaxDecompressed int64
	flagRaw             bool
	flagThreads         int
	flagNoCache         bool
	flagBaseline        string
	flagFailOn          string
	flagMetricsTextfile string
	flagAudit           bool
	flagTUI             bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan the specified save file for redundant colour escapes",
		Long: "Scan decompresses each save file and lists every run of printable text that is " +
			"wrapped in at least --escape-pairs opening escapes. Directories are walked for gzip files.",
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs for files under directories")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files under directories larger than this (0 = no limit)")
	cmd.Flags().Int64Var(&flagMaxDecompressed, "max-decompressed-bytes", 0, "abort when a save file decompresses past this size (0 = no limit)")
	cmd.Flags().BoolVar(&flagRaw, "raw", false, "scan files as-is without gzip decompression")
	cmd.Flags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable incremental scan cache")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "baseline file of known matches (default "+report.DefaultBaselineFile+")")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "exit non-zero when new matches are found: never|any (default never)")
	cmd.Flags().StringVar(&flagMetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the scan")
	cmd.Flags().BoolVar(&flagAudit, "audit", false, "append a summary of this scan to the audit log")
	cmd.Flags().BoolVar(&flagTUI, "tui", false, "browse matches in an interactive viewer")
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	format, err := s.format()
	if err != nil {
		return err
	}
	failOn := pickString(flagFailOn, s.local.FailOn, s.global.FailOn)
	if failOn == "" {
		failOn = "never"
	}
	if !config.ValidFailOn(failOn) {
		return fmt.Errorf("unknown --fail-on %q (want never or any)", failOn)
	}
	cfg, err := s.engineConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := cfg.Logger

	textfile := pickString(flagMetricsTextfile, s.local.MetricsTextfile, s.global.MetricsTextfile)
	var collector *metrics.Collector
	if textfile != "" {
		collector = metrics.New()
		collector.SetBuildInfo(version)
		cfg.Metrics = collector
	}

	human := format != "json" && format != "sarif"
	stderr := cmd.ErrOrStderr()
	if human && !flagTUI {
		checkForUpdate(cmd)
	}

	total, _ := engine.CountTargets(cfg)
	progressed := 0
	showProgress := human && !flagTUI && total > 1
	if showProgress {
		cfg.Progress = func() {
			progressed++
			if progressed%10 == 0 || progressed == total {
				pct := float64(progressed) / float64(total) * 100
				fmt.Fprintf(stderr, "\r[%d/%d] %.0f%%", progressed, total, pct)
			}
		}
	}
	res, err := engine.Scan(cmd.Context(), cfg)
	if showProgress {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		return err
	}

	if err := cache.SaveResults(cfg.CacheDir, cfg.Threshold, res.Files); err != nil {
		logger.Warn("could not save last results", "dir", cfg.CacheDir, "error", err)
	}
	if collector != nil {
		if err := collector.WriteTextfile(textfile); err != nil {
			logger.Warn("could not write metrics textfile", "path", textfile, "error", err)
		}
	}

	baselinePath := pickString(flagBaseline, s.local.Baseline, s.global.Baseline)
	if baselinePath == "" {
		baselinePath = report.DefaultBaselineFile
	}
	base, err := report.LoadBaseline(baselinePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("ignoring unreadable baseline", "path", baselinePath, "error", err)
	}
	fresh := report.FilterNew(res.Files, base)

	if pickBool(flagAudit, s.local.Audit, s.global.Audit) {
		rec := audit.CreateScanRecord(res.Files, fresh, cfg.Threshold, res.Duration, baselinePath)
		if err := audit.NewAuditLog(cfg.CacheDir).LogScan(rec); err != nil {
			logger.Warn("could not write audit log", "error", err)
		}
	}

	if flagTUI {
		rescan := func() ([]types.FileResult, error) {
			cfg.Progress = nil
			r, err := engine.Scan(cmd.Context(), cfg)
			return r.Files, err
		}
		return tui.Run(res.Files, tui.Options{Baseline: base, BaselinePath: baselinePath, Rescan: rescan})
	}

	opts := report.PrintOptions{NoColor: s.noColor(), Duration: res.Duration, Threshold: cfg.Threshold}
	if err := render(cmd.OutOrStdout(), format, fresh, opts); err != nil {
		return err
	}
	if report.ShouldFail(fresh, failOn) {
		return errMatchesFound
	}
	return nil
}

func render(w io.Writer, format string, results []types.FileResult, opts report.PrintOptions) error {
	switch format {
	case "sarif":
		if err := report.WriteSARIF(w, results, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case "json":
		return report.WriteJSON(w, results)
	case "text":
		report.PrintText(w, results, opts)
	case "table":
		report.PrintTable(w, results, opts)
	default:
		report.PrintDebug(w, results)
	}
	return nil
}
