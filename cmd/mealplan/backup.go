package mealplan

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/saadjs/mealplan-cli/internal/app"
	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

const snapshotStamp = "20060102-150405"

var (
	snapshotOut  string
	snapshotDir  string
	restoreFrom  string
	restoreForce bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot or restore recipes, pantry, plan and shopping list",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a checksummed snapshot of the meal planner database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := snapshotDirectory()
		if err != nil {
			return err
		}
		target := snapshotOut
		if target == "" {
			target = filepath.Join(dir, "mealplan-"+time.Now().Format(snapshotStamp)+".db")
		}
		return withDB(func(sqldb *sql.DB) error {
			recipes, err := service.CountRecipes(sqldb)
			if err != nil {
				return err
			}
			info, err := service.CreateBackup(sqldb, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot with %d recipe(s) to %s\n", recipes, info.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "sha256 %s\n", info.Checksum)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show saved snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := snapshotDirectory()
		if err != nil {
			return err
		}
		snapshots, err := service.ListBackups(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(snapshots) == 0 {
			fmt.Fprintf(out, "No snapshots in %s\n", dir)
			return nil
		}
		fmt.Fprintln(out, "TAKEN\tKB\tFILE")
		for _, s := range snapshots {
			fmt.Fprintf(out, "%s\t%d\t%s\n", s.CreatedAt.Format("2006-01-02 15:04"), (s.SizeBytes+1023)/1024, s.Path)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [snapshot.db]",
	Short: "Replace the meal planner database with a snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from := restoreFrom
		if len(args) == 1 {
			from = args[0]
		}
		if from == "" {
			return fmt.Errorf("snapshot file is required (argument or --file)")
		}
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(from, path, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Meal planner restored from %s\n", from)
		return nil
	},
}

// snapshotDirectory is --dir or the backups folder next to the database.
func snapshotDirectory() (string, error) {
	if snapshotDir != "" {
		return snapshotDir, nil
	}
	path, err := resolveDBPath()
	if err != nil {
		return "", err
	}
	return app.BackupDir(path), nil
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&snapshotOut, "out", "", "Snapshot file (default: timestamped file in the snapshot directory)")
	backupCreateCmd.Flags().StringVar(&snapshotDir, "dir", "", "Snapshot directory")
	backupListCmd.Flags().StringVar(&snapshotDir, "dir", "", "Snapshot directory (default: backups/ beside the database)")
	backupRestoreCmd.Flags().StringVar(&restoreFrom, "file", "", "Snapshot file to restore")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Replace an existing database")
}
