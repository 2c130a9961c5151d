package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger builds the command logger. A terminal gets the text handler,
// anything else (pipes, CI, tests) gets JSON lines. Verbose lowers the
// level to debug.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
