// Package config handles the XDG configuration directory, its files, and
// the optional config.yaml settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional settings file inside the config directory.
	ConfigFile = "config.yaml"

	// DatabaseFile is the default SQLite filename.
	DatabaseFile = "todo.db"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TODO_SEED_URL.
	EnvPrefix = "TODO"
)

// Seed sources.
const (
	SourceDummyJSON   = "dummyjson"
	SourceGoogleTasks = "googletasks"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Database is the SQLite path; relative paths are resolved against Dir.
	Database string `mapstructure:"database"`

	Seed  SeedConfig  `mapstructure:"seed"`
	Serve ServeConfig `mapstructure:"serve"`

	// Log receives debug output. Set by the dispatcher.
	Log *log.Logger `mapstructure:"-"`
}

// SeedConfig controls the one-time import into an empty store.
type SeedConfig struct {
	// Enabled turns the import on or off.
	Enabled bool `mapstructure:"enabled"`

	// Source is "dummyjson" or "googletasks".
	Source string `mapstructure:"source"`

	// URL is the dummyjson base URL.
	URL string `mapstructure:"url"`

	// List is the Google Tasks list ID.
	List string `mapstructure:"list"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// New creates a Config for the default or specified config directory and
// loads config.yaml from it when present.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config for dir with built-in settings and no file or
// environment overrides applied.
func Default(dir string) *Config {
	return &Config{
		Dir:      dir,
		Database: DatabaseFile,
		Seed: SeedConfig{
			Enabled: true,
			Source:  SourceDummyJSON,
			URL:     "https://dummyjson.com",
			List:    "@default",
		},
		Serve: ServeConfig{Addr: "127.0.0.1:8080"},
	}
}

func (c *Config) load() error {
	v := viper.New()
	setDefaults(v, Default(c.Dir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(filepath.Join(c.Dir, ConfigFile))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	switch c.Seed.Source {
	case SourceDummyJSON, SourceGoogleTasks:
	default:
		return fmt.Errorf("unknown seed source: %s", c.Seed.Source)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("database", d.Database)
	v.SetDefault("seed.enabled", d.Seed.Enabled)
	v.SetDefault("seed.source", d.Seed.Source)
	v.SetDefault("seed.url", d.Seed.URL)
	v.SetDefault("seed.list", d.Seed.List)
	v.SetDefault("serve.addr", d.Serve.Addr)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
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

// DatabasePath returns the SQLite database path.
func (c *Config) DatabasePath() string {
	db := c.Database
	if db == "" {
		db = DatabaseFile
	}
	if db == ":memory:" || filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(c.Dir, db)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// Logger returns the debug logger, or one that discards when none is set.
func (c *Config) Logger() *log.Logger {
	if c.Log == nil {
		return log.New(io.Discard, "", 0)
	}
	return c.Log
}

// NewLogger returns the logger for the given debug setting: prefixed
// output to w when debug is on, discarded otherwise.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	if !debug {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, AppName+": ", log.Ltime|log.Lmicroseconds)
}
