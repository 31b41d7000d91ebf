// Package logging builds the hclog loggers shared by every module and by
// go-plugin capture clients.
package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

// New returns the root logger. An unknown level falls back to info.
func New(level string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "focusreel",
		Level:  lvl,
		Output: out,
	})
}

// Discard is used by tests and by callers that did not wire a logger.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}

// OrDiscard guards constructors that accept an optional logger.
func OrDiscard(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
