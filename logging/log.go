// Package logging sets up the leveled, per-module go-logging output shared by
// every part of the server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/op/go-logging.v1"
)

const format = "%{time:2006-01-02 15:04:05.000} %{level} [%{module}] %{message}"

// Backend routes every module logger to one destination at one level.
type Backend struct {
	leveled logging.LeveledBackend
	closer  io.Closer
}

// New builds a Backend. Output goes nowhere when disable is set, to stdout when
// file is empty and is appended to file otherwise.
func New(file, level string, disable bool) (*Backend, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var out io.Writer
	var closer io.Closer
	switch {
	case disable:
		out = io.Discard
	case file != "":
		f, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o640)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", file, err)
		}
		out, closer = f, f
	default:
		out = os.Stdout
	}

	formatter := logging.MustStringFormatter(format)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(out, "", 0), formatter))
	leveled.SetLevel(lvl, "")
	return &Backend{leveled: leveled, closer: closer}, nil
}

// GetLogger returns the logger for module.
func (b *Backend) GetLogger(module string) *logging.Logger {
	l := logging.MustGetLogger(module)
	l.SetBackend(b.leveled)
	return l
}

// GetLogWriter adapts module's logger to an io.Writer: each line written is
// logged at level. gin's access and recovery logs are wired through it.
func (b *Backend) GetLogWriter(module, level string) (io.Writer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := b.GetLogger(module)

	emit := map[logging.Level]func(string, ...interface{}){
		logging.CRITICAL: l.Critical,
		logging.ERROR:    l.Error,
		logging.WARNING:  l.Warning,
		logging.NOTICE:   l.Notice,
		logging.INFO:     l.Info,
		logging.DEBUG:    l.Debug,
	}[lvl]
	return lineWriter(emit), nil
}

// Close closes the log file, if one was opened.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// ParseLevel accepts a go-logging level name in any case.
func ParseLevel(level string) (logging.Level, error) {
	lvl, err := logging.LogLevel(strings.TrimSpace(level))
	if err != nil {
		return logging.ERROR, fmt.Errorf("logging: unknown level %q", level)
	}
	return lvl, nil
}

type lineWriter func(string, ...interface{})

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line = strings.TrimRight(line, "\r "); line != "" {
			w("%s", line)
		}
	}
	return len(p), nil
}
