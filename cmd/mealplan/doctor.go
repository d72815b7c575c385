package mealplan

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Orphan planned entries: %d\n", report.OrphanPlannedEntries)
			fmt.Fprintf(cmd.OutOrStdout(), "Duplicate auto shopping items: %d\n", report.DuplicateAutoItems)
			fmt.Fprintf(cmd.OutOrStdout(), "Malformed plan dates: %d\n", report.MalformedPlanDates)
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped orphans: %d\n", report.SkippedOrphans)
				fmt.Fprintf(cmd.OutOrStdout(), "Removed duplicates: %d\n", report.RemovedDuplicates)
				report, err = service.RunDoctor(sqldb, false, time.Now())
				if err != nil {
					return err
				}
			}
			if report.OrphanPlannedEntries > 0 || report.DuplicateAutoItems > 0 || report.MalformedPlanDates > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Skip orphaned planned meals and drop duplicate auto shopping items")
}
