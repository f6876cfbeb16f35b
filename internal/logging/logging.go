// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	// File enables a rotated log file alongside stderr.
	File string
}

// Setup applies opts to the standard logrus logger and returns it. The
// returned closer releases the log file, if any.
func Setup(opts Options) (*logrus.Logger, io.Closer, error) {
	return configure(logrus.StandardLogger(), os.Stderr, opts)
}

func configure(l *logrus.Logger, console io.Writer, opts Options) (*logrus.Logger, io.Closer, error) {
	level := logrus.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		var err error
		if level, err = logrus.ParseLevel(s); err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
	}
	l.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text", "console":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	out := console
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		out = io.MultiWriter(console, w)
		closer = w
	}
	l.SetOutput(out)
	return l, closer, nil
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
