package colourscan

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the colourscan version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "colourscan", version)
			checkForUpdate(cmd)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Update colourscan to the latest GitHub release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			latest, err := selfUpdate()
			if err != nil {
				return fmt.Errorf("self-update: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "colourscan is at v%s\n", latest)
			return nil
		},
	})
}
