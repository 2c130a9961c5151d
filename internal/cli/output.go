package cli

import (
	"encoding/json"
	"fmt"
)

// IsJSON reports whether --json was passed.
func IsJSON() bool {
	return jsonOut
}

// IsNoColor reports whether color is disabled by --no-color or config.
func IsNoColor() bool {
	return noColor || GetConfig().NoColor
}

// OutputLine prints a line to stdout unless --quiet is set.
func OutputLine(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// VerboseOutput prints only with --verbose.
func VerboseOutput(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Printf(format, args...)
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
