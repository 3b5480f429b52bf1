// Package logging configures the process-wide diagnostic logger so log
// output never corrupts the mirrored terminal byte stream, using
// charmbracelet/log the way the teacher configures it.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Options configures where diagnostics go and how verbose they are.
type Options struct {
	// FilePath, if non-empty, routes logs to a file instead of stderr. A
	// mirrored TTY session cannot share stderr with diagnostics without
	// corrupting the user's screen, so a file is the expected production
	// configuration; stderr is kept as the fallback for development.
	FilePath string
	Debug    bool
}

// New builds a configured *log.Logger and the io.Closer (if any) the
// caller must close at shutdown. Every line carries a "session" field so
// diagnostics from one run of lector can be told apart from another in a
// shared log file.
func New(opts Options) (*log.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer

	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closer = f
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportCaller:    false,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "lector",
	})
	if opts.Debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger.With("session", uuid.NewString()), closer, nil
}
