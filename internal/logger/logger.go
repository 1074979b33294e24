// Package logger wraps a process-wide logrus logger.
//
// Warnings and errors are always written. Debug and info lines need
// --verbose or an explicit level. Logs go to stderr so they never mix with
// command output on stdout; the TUI redirects them to a file while it owns
// the terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Formats accepted by SetFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	log     = newLogger(os.Stderr)
)

// Fields is a set of structured key-value pairs attached to a log line.
type Fields = logrus.Fields

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(textFormatter())
	return l
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{DisableTimestamp: true, DisableQuote: true}
}

// SetVerbose switches between debug and warn level.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetLevel parses a logrus level name such as "info" or "error".
// An empty name leaves the level unchanged.
func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(lvl)
	verbose = lvl >= logrus.DebugLevel
	return nil
}

// Level returns the current level name.
func Level() string {
	mu.RLock()
	defer mu.RUnlock()
	return log.GetLevel().String()
}

// SetFormat selects text or JSON lines. JSON lines carry a timestamp.
func SetFormat(format string) error {
	var f logrus.Formatter
	switch strings.ToLower(format) {
	case "", FormatText:
		f = textFormatter()
	case FormatJSON:
		f = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
	mu.Lock()
	defer mu.Unlock()
	log.SetFormatter(f)
	return nil
}

// SetOutput sets the writer for log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// Output returns the current writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return log.Out
}

// Redirect sends log lines to w and returns a func restoring the previous writer.
func Redirect(w io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := log.Out
	log.SetOutput(w)
	return func() { SetOutput(prev) }
}

func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debugf(format, args...)
}

func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Infof(format, args...)
}

func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warnf(format, args...)
}

func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Errorf(format, args...)
}

// Section prints a header line in verbose mode, to group the debug lines of one stage.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(log.Out, "\n=== %s ===\n", name)
	}
}

// WithFields returns an entry carrying structured fields at the current level.
func WithFields(fields Fields) *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return log.WithFields(fields)
}
