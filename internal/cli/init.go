package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/config"
	"github.com/diogenes-ai-code/gtadmin/internal/db"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

var (
	initForce      bool
	initConfigPath string
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing database")
	initCmd.Flags().StringVar(&initConfigPath, "config", "", "Where to write the sample config (default ~/.gtadmin/config.toml)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gtadmin for first-time use",
	Long: `Initialize gtadmin by creating the database and a sample config.

This command:
- Creates the database with the snapshot schema
- Loads the seed project plan into it
- Writes ~/.gtadmin/config.toml if no config file exists yet

Use --force to overwrite an existing database.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initResult struct {
	Database string `json:"database"`
	Created  bool   `json:"created"`
	Schema   int64  `json:"schema_version"`
	Config   string `json:"config,omitempty"`
	Tickets  int    `json:"tickets"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetDBPath()

	if db.Exists(path) && !initForce {
		if IsJSON() {
			return printJSON(initResult{Database: resolvedDBPath()})
		}
		return errors.StateError("database already exists at %s", resolvedDBPath()).
			WithSuggestion("Use --force to overwrite it.")
	}

	if initForce && db.Exists(path) {
		VerboseOutput("Removing existing database...\n")
		if err := db.Delete(path); err != nil {
			return errors.WrapInternal(err, "failed to remove existing database")
		}
	}

	VerboseOutput("Creating database...\n")
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	// Opening an empty slot serves the seed; persist it so the database
	// holds a snapshot from the start.
	data, err := a.store.ExportBytes()
	if err != nil {
		return err
	}
	if _, err := a.store.Import(data); err != nil {
		return err
	}

	version, err := a.db.MigrationStatus()
	if err != nil {
		return errors.WrapInternal(err, "failed to get migration status")
	}

	result := initResult{
		Database: a.db.Path(),
		Created:  true,
		Schema:   version,
		Tickets:  len(a.store.Snapshot().Tickets),
	}

	cfgPath := initConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := config.WriteConfigFile(cfgPath); err != nil {
				logger.Warn("failed to write sample config", "path", cfgPath, "error", err)
			} else {
				result.Config = cfgPath
			}
		}
	}

	if IsJSON() {
		return printJSON(result)
	}

	OutputLine("Initialized gtadmin database at %s", result.Database)
	OutputLine("Schema version: %d", result.Schema)
	OutputLine("Seeded %d tickets", result.Tickets)
	if result.Config != "" {
		OutputLine("Wrote sample config to %s", result.Config)
	}
	return nil
}
