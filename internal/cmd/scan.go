package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/cfptracker/internal/server"
	"github.com/spf13/cobra"
)

var scanDate string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the CFP deadline scan once and print the report",
	Example: `  cfptracker scan
  cfptracker scan --date 2026-05-10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		loc := rt.cfg.CFPScanLocation
		now := time.Now()
		if scanDate != "" {
			t, err := time.ParseInLocation("2006-01-02", scanDate, loc)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			now = t
		}

		report, err := server.NewDeadlineScanner(rt.db, rt.redis, loc, rt.log).Scan(cmd.Context(), now)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanDate, "date", "", "Scan as if today were this date in CFP_SCAN_TIMEZONE (YYYY-MM-DD)")
}
