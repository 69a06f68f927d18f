package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Verbose forces debug level regardless of
// levelStr so the relay's previews and sizes are emitted.
func New(levelStr string, verbose bool, env string) *logrus.Logger {
	return newWithOutput(os.Stdout, levelStr, verbose, env)
}

func newWithOutput(out io.Writer, levelStr string, verbose bool, env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	return log
}

// Discard returns a logger that writes nowhere. Used by tests and the CLI.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
