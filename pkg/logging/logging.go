// Package logging provides the logger abstraction used across clockface.
// It uses logrus under the hood and can rotate a log file with lumberjack.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface handed to components.
type Logger interface {
	Debugf(format string, args ...any)
	Debug(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Warningf(format string, args ...any)
	Warning(args ...any)
	Errorf(format string, args ...any)
	Error(args ...any)
	WithField(key string, value any) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
}

type logger struct {
	*logrus.Logger
}

// New returns a Logger writing text entries with full timestamps to w.
func New(w io.Writer, level logrus.Level, hooks ...logrus.Hook) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	for _, h := range hooks {
		l.AddHook(h)
	}
	return &logger{Logger: l}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return New(io.Discard, logrus.PanicLevel)
}

// ParseLevel maps a config string to a logrus level. Unknown or empty
// strings fall back to info.
func ParseLevel(s string) logrus.Level {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Options configures Open.
type Options struct {
	Level string
	// File enables a rotated log file next to stderr output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Open builds a Logger from opts. The returned closer releases the log file
// and is safe to call when no file was configured.
func Open(opts Options, hooks ...logrus.Hook) (Logger, io.Closer, error) {
	if opts.File == "" {
		return New(os.Stderr, ParseLevel(opts.Level), hooks...), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, nil, err
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	w := io.MultiWriter(os.Stderr, file)
	return New(w, ParseLevel(opts.Level), hooks...), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
