package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// StampFormat is the timestamp layout of every log line
const StampFormat = "2006-01-02 15:04:05"

// New returns the console logger. verbosity 0 logs info and up, 1 or more
// enables debug output.
func New(w io.Writer, verbosity int) *log.Logger {
	level := log.InfoLevel
	if verbosity > 0 {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      StampFormat,
		Formatter:       log.TextFormatter,
	})
}

// Discard returns a logger that writes nothing
func Discard() *log.Logger {
	return log.New(io.Discard)
}
