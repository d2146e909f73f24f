// Package logging builds the logrus loggers used across alertprefs.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields represents structured logging fields.
type Fields = logrus.Fields

// ParseLevel maps a config level name to a logrus level. Unknown or empty
// names fall back to info.
func ParseLevel(name string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger creates a JSON logger writing to w at the named level.
func NewLogger(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// NewComponentLogger returns an entry tagged with the component name.
func NewComponentLogger(logger *logrus.Logger, component string) *logrus.Entry {
	return logger.WithField("component", component)
}

// Discard returns a logger that drops everything. Used when callers pass no
// logger and in tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
