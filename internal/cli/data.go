package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

var (
	exportOutput string
	exportZstd   bool
	resetYes     bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file or directory instead of stdout")
	exportCmd.Flags().BoolVar(&exportZstd, "zstd", false, "Compress the export with zstd")

	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm replacing all data with the seed")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the project data as JSON",
	Long: `Export phases, tickets, labels and the ticket counter as one JSON
document. With a directory as --output the file is named
gerustthuis-admin-YYYY-MM-DD.json (.json.zst with --zstd).

Examples:
  gtadmin export > backup.json
  gtadmin export -o . --zstd`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	var buf bytes.Buffer
	if exportZstd {
		err = a.store.ExportCompressed(&buf)
	} else {
		err = a.store.Export(&buf)
	}
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err := io.Copy(os.Stdout, &buf)
		return err
	}

	path := exportOutput
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, store.ExportFileName(time.Now(), exportZstd))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.WrapInternal(err, "failed to write export")
	}

	if IsJSON() {
		return printJSON(map[string]interface{}{"path": path, "bytes": buf.Len()})
	}
	OutputLine("Exported to %s", path)
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the project data with an export",
	Long: `Replace all project data with an export document. Use "-" to read
stdin. JSON with comments and zstd-compressed exports are accepted.

A document without project or phases is ignored; an invalid document is
rejected. In both cases the current data is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return errors.InvalidArgs("failed to read %s: %v", args[0], err)
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	imported, err := a.store.Import(data)
	if err != nil {
		return err
	}
	if !imported {
		return errors.InvalidArgs("document has no project or phases; nothing imported")
	}

	snap := a.store.Snapshot()
	if IsJSON() {
		return printJSON(map[string]interface{}{
			"imported": true,
			"phases":   len(snap.Phases),
			"tickets":  len(snap.Tickets),
			"labels":   len(snap.Labels),
		})
	}
	OutputLine("Imported %d phases, %d tickets and %d labels", len(snap.Phases), len(snap.Tickets), len(snap.Labels))
	return nil
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace all project data with the seed plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.InvalidArgs("reset replaces all project data").
				WithSuggestion("Run 'gtadmin export' first, then pass --yes.")
		}

		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Reset(); err != nil {
			return err
		}
		if IsJSON() {
			return printJSON(a.store.Summary())
		}
		OutputLine("Reset to seed: %d tickets, next number %s", len(a.store.Snapshot().Tickets), a.store.NextTicketNumber())
		return nil
	},
}
