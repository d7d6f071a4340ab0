package services

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// log is the shared service logger. Diagnostics go to stderr so stdout
// stays reserved for command payloads.
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLogLevel adjusts the shared logger level from a config string.
func SetLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		log.SetLevel(logrus.DebugLevel)
	case "WARN", "WARNING":
		log.SetLevel(logrus.WarnLevel)
	case "ERROR":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// Logger exposes the shared logger to other packages.
func Logger() *logrus.Logger {
	return log
}
