package colourscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/colourscan/colourscan/internal/cache"
	"github.com/colourscan/colourscan/internal/report"
	"github.com/colourscan/colourscan/internal/tui"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the results of the last scan without rescanning",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			last, err := cache.LoadResults(s.cacheDir())
			if errors.Is(err, os.ErrNotExist) {
				return errors.New("no previous scan results; run 'colourscan scan' first")
			}
			if err != nil {
				return fmt.Errorf("load last results: %w", err)
			}
			if flagJSON {
				return report.WriteJSON(cmd.OutOrStdout(), last.Results)
			}
			path := pickString("", s.local.Baseline, s.global.Baseline)
			if path == "" {
				path = report.DefaultBaselineFile
			}
			base, _ := report.LoadBaseline(path)
			return tui.Run(last.Results, tui.Options{Baseline: base, BaselinePath: path, CachedAt: last.Timestamp})
		},
	}
	rootCmd.AddCommand(cmd)
}
