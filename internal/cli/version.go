package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/db"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version, schema and snapshot information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

type snapshotInfo struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	Digest    string    `json:"digest"`
	UpdatedAt time.Time `json:"updated_at"`
}

type versionInfo struct {
	Version   string        `json:"version"`
	GitCommit string        `json:"git_commit"`
	BuildDate string        `json:"build_date"`
	GoVersion string        `json:"go_version"`
	Platform  string        `json:"platform"`
	Database  string        `json:"database,omitempty"`
	Schema    int64         `json:"schema_version,omitempty"`
	Snapshot  *snapshotInfo `json:"snapshot,omitempty"`
}

// describeDatabase fills in the schema version and the stored snapshot
// slot. It reads only; a database that was never migrated stays at 0.
func describeDatabase(info *versionInfo) {
	path := GetDBPath()
	if !db.Exists(path) {
		return
	}
	info.Database = resolvedDBPath()

	database, err := db.Open(path)
	if err != nil {
		logger.Debug("cannot open database", "error", err)
		return
	}
	defer database.Close()

	if v, err := database.MigrationStatus(); err == nil {
		info.Schema = v
	}
	key := GetConfig().StorageKey
	if snap, err := db.NewSnapshotRepo(database.DB).Get(key); err == nil && snap != nil {
		info.Snapshot = &snapshotInfo{Key: key, Size: snap.Size, Digest: snap.Digest, UpdatedAt: snap.UpdatedAt}
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	describeDatabase(&info)

	if IsJSON() {
		return printJSON(info)
	}

	fmt.Printf("gtadmin %s (%s, %s)\n", info.Version, shortCommit(), shortDate())
	fmt.Printf("Go:       %s on %s\n", info.GoVersion, info.Platform)
	if info.Database == "" {
		fmt.Println("Database: not initialized (run 'gtadmin init')")
		return nil
	}
	fmt.Printf("Database: %s (schema v%d)\n", info.Database, info.Schema)
	if s := info.Snapshot; s != nil {
		fmt.Printf("Snapshot: %s, %s, saved %s\n", s.Key, formatBytes(int64(s.Size)), common.FormatAge(s.UpdatedAt))
	}
	return nil
}
