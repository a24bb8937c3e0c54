// Package config provides configuration for netedit.
//
// Configuration is layered: built-in defaults, then a TOML or YAML file,
// then environment variables.
package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/dshills/netedit/internal/engine/history"
	"github.com/dshills/netedit/internal/logging"
)

// Config is the complete netedit configuration.
type Config struct {
	History HistoryConfig `toml:"history" yaml:"history"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// HistoryConfig configures the undo list.
type HistoryConfig struct {
	// MaxEntries bounds the number of committed undo entries.
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
	// MergeChanges folds consecutive edits of the same attribute together.
	MergeChanges bool `toml:"merge_changes" yaml:"merge_changes"`
	// PanicOnUnbalanced turns unmatched group scopes into panics.
	PanicOnUnbalanced bool `toml:"panic_on_unbalanced" yaml:"panic_on_unbalanced"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	// File is the log file path. Empty means stderr.
	File string `toml:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			MaxEntries: history.DefaultMaxEntries,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
	}
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	if c.History.MaxEntries <= 0 {
		errs = append(errs, &ValidationError{
			Path:    "history.max_entries",
			Value:   c.History.MaxEntries,
			Message: "must be positive",
		})
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, &ValidationError{
			Path:    "log.level",
			Value:   c.Log.Level,
			Message: "must be one of debug, info, warn, error",
		})
	}
	switch logging.Format(strings.ToLower(c.Log.Format)) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, &ValidationError{
			Path:    "log.format",
			Value:   c.Log.Format,
			Message: "must be text or json",
		})
	}
	return errors.Join(errs...)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() slog.Level {
	return logging.ParseLevel(c.Log.Level)
}

// LoggerConfig converts the log section to a logging.Config.
// Output is left unset.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:  c.LogLevel(),
		Format: logging.Format(strings.ToLower(c.Log.Format)),
	}
}

// HistoryOptions converts the history section to undo list options.
func (c *Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithMaxEntries(c.History.MaxEntries),
		history.WithMerging(c.History.MergeChanges),
		history.WithPanicOnUnbalanced(c.History.PanicOnUnbalanced),
	}
}
