package colourscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/colourscan/colourscan/internal/engine"
	"github.com/spf13/cobra"
)

var (
	flagSaveFile      string
	flagEscapePairs   int
	flagJSON          bool
	flagSARIF         bool
	flagFormat        string
	flagNoColor       bool
	flagLogLevel      string
	flagLogFormat     string
	flagConfig        string
	flagCacheDir      string
	flagNoUpdateCheck bool

	version = "0.1.0"
)

var (
	errNoCommand = errors.New("no command specified")
	// errMatchesFound makes the process exit non-zero without printing an
	// error message; the report has already been written.
	errMatchesFound = errors.New("matches found")
)

// rootCmd is the base Cobra command for the colourscan CLI.
var rootCmd = &cobra.Command{
	Use:   "colourscan",
	Short: "Find text wrapped in redundant colour escapes in save files",
	Long: "colourscan decompresses gzip save files and reports printable text that is " +
		"preceded by at least --escape-pairs ESC markers and followed by closing escapes.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		return errNoCommand
	},
}

// Execute runs the colourscan CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errMatchesFound) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagSaveFile, "save-file", "s", "", "save file to scan")
	pf.IntVarP(&flagEscapePairs, "escape-pairs", "e", engine.DefaultThreshold, "number of escape pairs to scan for")
	pf.BoolVar(&flagJSON, "json", false, "emit JSON")
	pf.BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	pf.StringVar(&flagFormat, "format", "", "report format: debug|text|table (default debug)")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format: text|json")
	pf.StringVar(&flagConfig, "config", "", "config file (default: .colourscan.yml in the working directory)")
	pf.StringVar(&flagCacheDir, "cache-dir", "", "directory for the scan cache, last results and audit log")
	pf.BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}
