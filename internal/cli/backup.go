package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/backup"
	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/db"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

func init() {
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Database backup commands",
	Long: `Manage the rotating, zstd-compressed copies of the database file.

A backup is taken automatically before a command runs when the newest
one is older than [backup] interval_hours.`,
}

func backupManager() *backup.Manager {
	return backup.NewManager(resolvedDBPath(), GetConfig().Backup, logger)
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := backupManager()
		backups, err := mgr.List()
		if err != nil {
			return errors.WrapInternal(err, "failed to list backups")
		}
		if IsJSON() {
			if backups == nil {
				backups = []backup.Backup{}
			}
			return printJSON(backups)
		}
		if len(backups) == 0 {
			OutputLine("No backups in %s", mgr.Dir())
			return nil
		}
		fmt.Printf("%-4s %-10s %-10s %s\n", "NUM", "AGE", "SIZE", "PATH")
		for _, b := range backups {
			fmt.Printf("%-4d %-10s %-10s %s\n", b.Number, common.FormatAge(b.ModTime), formatBytes(b.Size), b.Path)
		}
		return nil
	},
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Take a backup now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedDBPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return errors.NotFound("no database at %s", path).WithSuggestion(SuggestRunInit)
		}
		created, err := backupManager().Create()
		if err != nil {
			return errors.WrapInternal(err, "backup failed")
		}
		if IsJSON() {
			return printJSON(map[string]string{"path": created})
		}
		OutputLine("Created backup: %s", created)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <number>",
	Short: "Overwrite the database with a backup",
	Long: `Overwrite the database file with backup <number> (1 is the newest).
Stop 'gtadmin serve' first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return errors.InvalidArgs("invalid backup number %q", args[0])
		}
		mgr := backupManager()
		backups, err := mgr.List()
		if err != nil {
			return errors.WrapInternal(err, "failed to list backups")
		}
		found := false
		for _, b := range backups {
			found = found || b.Number == n
		}
		if !found {
			return errors.NotFound("backup %d not found", n).WithSuggestion(SuggestListBackups)
		}

		path := resolvedDBPath()
		db.RemoveSidecars(path)

		if err := mgr.Restore(n); err != nil {
			return errors.WrapInternal(err, "restore failed")
		}
		OutputLine("Restored backup %d to %s", n, path)
		return nil
	},
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
