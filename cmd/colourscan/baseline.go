package colourscan

import (
	"fmt"

	"github.com/colourscan/colourscan/internal/engine"
	"github.com/colourscan/colourscan/internal/report"
	"github.com/spf13/cobra"
)

var flagBaselineOut string

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update [paths...]",
		Short: "Record every current match as known",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			cfg, err := s.engineConfig(cmd, args)
			if err != nil {
				return err
			}
			res, err := engine.Scan(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			path := pickString(flagBaselineOut, s.local.Baseline, s.global.Baseline)
			if path == "" {
				path = report.DefaultBaselineFile
			}
			if err := report.SaveBaseline(path, res.Files); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d matches written to %s\n", res.Matches(), path)
			return nil
		},
	}
	update.Flags().StringVar(&flagBaselineOut, "output", "", "baseline file to write (default "+report.DefaultBaselineFile+")")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
