package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLogLevel          = "NETEDIT_LOG_LEVEL"
	EnvLogFormat         = "NETEDIT_LOG_FORMAT"
	EnvHistoryMaxEntries = "NETEDIT_HISTORY_MAX_ENTRIES"
)

// FileSystem is an abstraction for reading config files.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader loads configuration from a TOML or YAML file.
type Loader struct {
	fs     FileSystem
	lookup func(string) (string, bool)
}

// NewLoader creates a loader reading from the OS file system and
// environment.
func NewLoader() *Loader {
	return &Loader{
		fs:     OSFS{},
		lookup: os.LookupEnv,
	}
}

// NewLoaderWith creates a loader with a custom file system and environment.
// This is useful for testing.
func NewLoaderWith(fsys FileSystem, lookup func(string) (string, bool)) *Loader {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return &Loader{fs: fsys, lookup: lookup}
}

// Load returns defaults merged with the file at path (if any) and the
// environment, validated.
// An empty path or a missing file is not an error.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode parses data over cfg, choosing the format by extension.
func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// applyEnv overrides settings from environment variables.
func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.lookup(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := l.lookup(EnvLogFormat); ok {
		cfg.Log.Format = v
	}
	if v, ok := l.lookup(EnvHistoryMaxEntries); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &ValidationError{
				Path:    "history.max_entries",
				Value:   v,
				Message: EnvHistoryMaxEntries + " must be an integer",
			}
		}
		cfg.History.MaxEntries = n
	}
	return nil
}
