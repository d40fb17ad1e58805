// Package logging configures the shared logger for fluidctl.
package logging

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Level:           log.WarnLevel,
})

// SetVerbose lowers the level so per-call RPC details are visible.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
}

// L returns the shared logger.
func L() *log.Logger {
	return logger
}
