// Package config handles the configuration directory and the settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"taskman/internal/store"
)

const (
	// AppName is the application directory name.
	AppName = "taskman"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// DefaultStorageFile is the storage filename used when none is configured.
	DefaultStorageFile = "storage.json"

	// DefaultStorageKey is the key the task collection is kept under.
	DefaultStorageKey = store.DefaultKey

	// DefaultAddr is the listen address of the web front end.
	DefaultAddr = "127.0.0.1:8080"
)

// Values of storage.on_corrupt.
const (
	OnCorruptError = "error"
	OnCorruptEmpty = "empty"
)

// ErrInvalidSettings is returned when config.yaml cannot be read or holds bad values.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings mirrors config.yaml.
type Settings struct {
	Storage StorageSettings `yaml:"storage"`
	Display DisplaySettings `yaml:"display"`
	Serve   ServeSettings   `yaml:"serve"`
	Log     LogSettings     `yaml:"log"`
}

// StorageSettings selects where and how the collection is persisted.
type StorageSettings struct {
	Key       string `yaml:"key"`
	File      string `yaml:"file"`
	OnCorrupt string `yaml:"on_corrupt"`
}

// DisplaySettings controls presentation.
type DisplaySettings struct {
	// Locale is a BCP 47 tag. Empty means take it from the environment.
	Locale string `yaml:"locale"`
}

// ServeSettings configures the web front end.
type ServeSettings struct {
	Addr string `yaml:"addr"`
}

// LogSettings controls diagnostics on stderr.
type LogSettings struct {
	// Level is one of debug, info, warn, error. --debug overrides it.
	Level string `yaml:"level"`

	// Format is one of text, logfmt, json.
	Format string `yaml:"format"`
}

// DefaultSettings returns the settings used when config.yaml is absent.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageSettings{
			Key:       DefaultStorageKey,
			File:      DefaultStorageFile,
			OnCorrupt: OnCorruptError,
		},
		Serve: ServeSettings{Addr: DefaultAddr},
		Log:   LogSettings{Level: "info", Format: "text"},
	}
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are the values loaded from config.yaml, or the defaults.
	Settings Settings

	// Logger receives diagnostics. Never nil after New.
	Logger *log.Logger
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskman or $HOME/.config/taskman.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		Settings: DefaultSettings(),
		Logger:   log.Default(),
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// StoragePath returns the path to the storage file. Relative file settings
// are resolved against the config directory.
func (c *Config) StoragePath() string {
	file := c.Settings.Storage.File
	if file == "" {
		file = DefaultStorageFile
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.Dir, file)
}

// LenientDecode reports whether unreadable persisted data is treated as an
// empty collection.
func (c *Config) LenientDecode() bool {
	return c.Settings.Storage.OnCorrupt == OnCorruptEmpty
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Load reads config.yaml into c.Settings. A missing file keeps the defaults.
// Fields left out of the file keep their default values.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.SettingsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSettings, c.SettingsPath(), err)
	}
	if err := s.validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSettings, c.SettingsPath(), err)
	}
	c.Settings = s
	return nil
}

func (s *Settings) validate() error {
	s.Storage.OnCorrupt = strings.ToLower(strings.TrimSpace(s.Storage.OnCorrupt))
	switch s.Storage.OnCorrupt {
	case "":
		s.Storage.OnCorrupt = OnCorruptError
	case OnCorruptError, OnCorruptEmpty:
	default:
		return fmt.Errorf("storage.on_corrupt: unknown value %q (want %q or %q)",
			s.Storage.OnCorrupt, OnCorruptError, OnCorruptEmpty)
	}
	if strings.TrimSpace(s.Storage.Key) == "" {
		s.Storage.Key = DefaultStorageKey
	}
	if strings.TrimSpace(s.Serve.Addr) == "" {
		s.Serve.Addr = DefaultAddr
	}
	return nil
}
