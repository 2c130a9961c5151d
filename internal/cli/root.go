package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/backup"
	"github.com/diogenes-ai-code/gtadmin/internal/config"
	"github.com/diogenes-ai-code/gtadmin/internal/db"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	dbPath  string
	jsonOut bool
	quiet   bool
	verbose bool
	noColor bool
)

// globalConfig is loaded once in init; tests replace it.
var globalConfig *config.Config

// logger is rebuilt in PersistentPreRunE once the flags are parsed.
var logger = slog.Default()

// noAutoBackup lists commands that run without taking a backup first:
// they either do not need the database or create or replace its file.
var noAutoBackup = map[string]bool{
	"help":    true,
	"version": true,
	"init":    true,
	"restore": true,
}

var rootCmd = &cobra.Command{
	Use:   "gtadmin",
	Short: "Project admin for the GerustThuis pilot",
	Long: `gtadmin tracks the GerustThuis project plan: phases with go/no-go
gates and budgets, tickets with dependencies, labels and comments.

It also reads households, members, invitations and room activity from
the hosted backend when one is configured.

Use "gtadmin init" to create the database and a sample config.
Use "gtadmin serve" to start the JSON API.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(os.Stderr, verbose)
		autoBackup(cmd)
		return nil
	},
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		cfg = config.DefaultConfig()
	}
	globalConfig = cfg

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "db", "", "Database file (default "+db.DefaultDBPath+")")
	flags.BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output and debug logging")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.SetVersionTemplate(fmt.Sprintf("gtadmin %s (%s, %s)\n", Version, shortCommit(), shortDate()))
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// autoBackup takes a backup when the newest one is older than the
// configured interval. A failed backup is logged and never fails the
// command.
func autoBackup(cmd *cobra.Command) {
	if noAutoBackup[cmd.Name()] || cmd.Parent() == backupCmd {
		return
	}
	cfg := GetConfig()
	if !cfg.Backup.Enabled {
		return
	}
	path := resolvedDBPath()
	if !db.Exists(path) {
		return
	}

	created, err := backup.NewManager(path, cfg.Backup, logger).BackupIfNeeded()
	if err != nil {
		logger.Warn("automatic backup failed", "error", err)
		return
	}
	if created != "" {
		logger.Debug("created backup", "path", created)
	}
}

// GetDBPath returns the database path from the --db flag, else from the
// config (env, file), else "" for the default.
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return GetConfig().GetDB()
}

// resolvedDBPath is GetDBPath with the default filled in and ~ expanded.
func resolvedDBPath() string {
	return db.ResolvePath(GetDBPath())
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}
