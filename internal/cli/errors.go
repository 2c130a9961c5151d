package cli

import (
	"strings"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

// ExitCode returns the process exit code for an error. Errors that carry
// no kind exit with the general error code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return errors.GetCLIExitCode(err)
}

// FormatErrorMessage returns the error message with its suggestion, if
// the error carries one.
func FormatErrorMessage(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())
	if e, ok := errors.As(err); ok && e.Suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// Common suggestions
const (
	SuggestRunInit     = "Run 'gtadmin init' to create the database."
	SuggestListTickets = "Run 'gtadmin ticket list' to see available tickets."
	SuggestListPhases  = "Run 'gtadmin phase list' to see the phases."
	SuggestListLabels  = "Run 'gtadmin label list' to see the labels."
	SuggestListBackups = "Run 'gtadmin backup list' to see available backups."
)
