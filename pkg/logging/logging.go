// Package logging builds the logrus logger shared by the CLI and the
// selection view.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logPrefix     = "taxopick-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Options configures New.
type Options struct {
	Level string // logrus level name; unknown or empty means info
	// ToFile sends output to a dated file under Dir instead of Output.
	// Used while the TUI owns the terminal.
	ToFile bool
	File   string    // explicit log file, overrides the dated file
	Dir    string    // default ~/.taxopick/logs
	Output io.Writer // default os.Stderr
}

// New returns a configured logger. The returned closer releases the log
// file, if one was opened; it is never nil.
func New(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetLevel(ParseLevel(opts.Level))
	noop := func() error { return nil }

	if !opts.ToFile {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		logger.SetOutput(out)
		return logger, noop, nil
	}

	path := opts.File
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, noop, err
			}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, noop, err
		}
		cleanOldLogs(dir, time.Now())
		path = FileName(dir, time.Now())
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, noop, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, noop, err
	}
	logger.SetOutput(f)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, f.Close, nil
}

// ParseLevel maps a level name to a logrus level, falling back to info.
func ParseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// DefaultDir is ~/.taxopick/logs.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taxopick", "logs"), nil
}

// FileName returns the log file for day t inside dir.
func FileName(dir string, t time.Time) string {
	return filepath.Join(dir, logPrefix+t.Format("2006-01-02")+logSuffix)
}

// cleanOldLogs removes dated log files older than retentionDays.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}
