package colourscan

import (
	"fmt"
	"strconv"

	"github.com/colourscan/colourscan/internal/audit"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show scans recorded with --audit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			records, err := audit.NewAuditLog(s.cacheDir()).LoadHistory()
			if err != nil {
				return err
			}
			if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
				records = records[:flagHistoryLimit]
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No scans recorded.")
				return nil
			}
			table := tablewriter.NewWriter(out)
			table.Header("Time", "Threshold", "Files", "Bytes", "Matches", "New", "Duration")
			for _, r := range records {
				_ = table.Append([]string{
					r.Timestamp.Format("2006-01-02 15:04:05"),
					strconv.Itoa(r.Threshold),
					strconv.Itoa(r.FilesScanned),
					strconv.Itoa(r.BytesScanned),
					strconv.Itoa(r.TotalMatches),
					strconv.Itoa(r.NewMatches),
					r.Duration,
				})
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "show at most this many scans (0 = all)")
	rootCmd.AddCommand(cmd)
}
