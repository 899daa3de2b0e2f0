package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the diagnostics logger. Diagnostics stay at warn level
// unless verbose output was requested.
func NewLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
