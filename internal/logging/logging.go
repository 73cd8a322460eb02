// Package logging configures logrus the way the pack's example
// services do (tobilg-duckdb-tileserver's internal/cache logs with
// log.Debugf/Infof on the package-level logger); it adds structured
// fields at the two suspension points spec.md §5 names: reading input
// bytes and writing tile bytes.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus.Logger configured for either human-readable
// (TTY) or JSON (piped/CI) output, matching the common logrus
// convention of detecting a terminal.
func New(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if isTerminal(os.Stderr) {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// ReadingInput logs the input-bytes suspension point from spec.md §5.
func ReadingInput(log *logrus.Logger, path string, bytesRead int) {
	log.WithFields(logrus.Fields{"path": path, "bytes": bytesRead}).Debug("read input document")
}

// WritingTile logs the tile-bytes suspension point from spec.md §5.
func WritingTile(log *logrus.Logger, z, x, y uint32, bytesWritten int) {
	log.WithFields(logrus.Fields{"z": z, "x": x, "y": y, "bytes": bytesWritten}).Debug("wrote tile")
}
