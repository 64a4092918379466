// Package logging builds the daemon's logrus logger from config.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/anvanvan/blitz-dictation/internal/config"
)

// Rotation policy for the daemon log. Dictation sessions log a handful
// of lines each, so the files stay small; keep a couple of weeks.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 5
	logMaxAgeDays = 14
)

// Configure returns a logger writing to the rotating log file in the
// state dir, mirrored to stdout when logging.stdout is set. An
// unknown level name keeps logrus's default rather than failing the
// daemon over a typo.
func Configure(cfg *config.Config) (*logrus.Logger, error) {
	if err := config.MustStatePaths(cfg); err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetFormatter(formatterFor(cfg.Logging.Format))
	if lvl, err := logrus.ParseLevel(strings.ToLower(cfg.Logging.Level)); err == nil {
		logger.SetLevel(lvl)
	}
	logger.SetOutput(outputFor(cfg))
	return logger, nil
}

func formatterFor(name string) logrus.Formatter {
	if strings.EqualFold(name, "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

func outputFor(cfg *config.Config) io.Writer {
	rotator := &lumberjack.Logger{
		Filename:   cfg.Paths.LogPath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}
	if cfg.Logging.Stdout {
		return io.MultiWriter(os.Stdout, rotator)
	}
	return rotator
}

// NewTestLogger returns a logger that discards output, for tests.
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
