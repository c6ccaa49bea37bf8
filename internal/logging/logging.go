// Package logging builds the charmbracelet/log logger shared by the
// CLI and the orchestrators.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// New creates a logger writing to w at level. Timestamps are formatted
// as "HH:MM:SS.ms". When w is not a terminal the logger switches to
// logfmt so captured output stays machine readable.
func New(w io.Writer, level log.Level) *log.Logger {
	formatter := log.TextFormatter
	if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		formatter = log.LogfmtFormatter
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Formatter:       formatter,
		Prefix:          "pda",
	})
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) log.Level {
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// OrDefault returns l, or the package default logger if l is nil.
func OrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
