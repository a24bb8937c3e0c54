// Package logging provides leveled, structured logging for netedit.
//
// Logger keeps a small field-oriented API (WithField, WithComponent) on top of
// log/slog handlers, writing either text or JSON records.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format selects the record encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseLevel parses a log level string into slog.Level.
// Unknown strings map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level to output.
	Level slog.Level
	// Format is the record encoding. Defaults to text.
	Format Format
	// Output is where records are written. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// Logger wraps slog.Logger with a field-oriented API.
type Logger struct {
	slog  *slog.Logger
	level *slog.LevelVar
}

// New creates a logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	lv := new(slog.LevelVar)
	lv.Set(cfg.Level)

	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		h = slog.NewTextHandler(cfg.Output, opts)
	}
	return &Logger{slog: slog.New(h), level: lv}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(Config{Level: slog.LevelError + 1, Output: io.Discard})
}

// OpenFile creates a logger appending to the file at path.
// The returned closer must be closed by the caller.
func OpenFile(path string, cfg Config) (*Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // log file readable by owner and group
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	cfg.Output = f
	return New(cfg), f, nil
}

// WithField returns a logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{slog: l.slog.With(key, value), level: l.level}
}

// WithFields returns a logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{slog: l.slog.With(args...), level: l.level}
}

// WithComponent returns a logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum level for this logger and every logger derived
// from the same root.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.slog.Enabled(context.Background(), level)
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Debug logs a debug message with key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message with key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message with key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message with key/value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
	defaultMu         sync.RWMutex
)

// Default returns the process-wide logger.
// Creates a default logger on first call if not set.
func Default() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultMu.Lock()
		if defaultLogger == nil {
			defaultLogger = New(DefaultConfig())
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
// Should be called early in startup.
func SetDefault(l *Logger) {
	defaultLoggerOnce.Do(func() {})
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
