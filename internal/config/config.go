package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	MediaDir string `toml:"media_dir"`
	APIBind  string `toml:"api_bind"`
}

// OMDB contains configuration for the OMDB lookup API.
type OMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Sync contains tuning for the batch sync coordinator.
type Sync struct {
	MaxConcurrentWorkers int `toml:"max_concurrent_workers"`
	RetryLimit           int `toml:"retry_limit"`
	BackoffBaseMs        int `toml:"backoff_base_ms"`
}

// Logging contains log output configuration.
type Logging struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Config is the root configuration structure persisted as TOML.
type Config struct {
	Paths   `toml:"paths"`
	OMDB    `toml:"omdb"`
	Sync    `toml:"sync"`
	Logging `toml:"logging"`
}

// DefaultConfigPath returns the expected location of the user config file.
func DefaultConfigPath() string {
	return filepath.Join("~", ".config", "matinee", "config.toml")
}

// Load reads configuration from the provided path, falling back to the default
// location and then to repository defaults when no file exists. The returned
// string is the path that was actually consulted.
func Load(path string) (*Config, string, error) {
	resolved := strings.TrimSpace(path)
	explicit := resolved != ""
	if !explicit {
		resolved = DefaultConfigPath()
	}
	resolved = ExpandPath(resolved)

	cfg := Default()

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return nil, resolved, fmt.Errorf("config file %s does not exist", resolved)
		}
	default:
		return nil, resolved, fmt.Errorf("read config %s: %w", resolved, err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, err
	}
	return &cfg, resolved, nil
}

func (c *Config) applyEnvOverrides() {
	if c.OMDB.APIKey == "" {
		c.OMDB.APIKey = strings.TrimSpace(os.Getenv("OMDB_APIKEY"))
	}
}

func (c *Config) normalize() {
	c.DataDir = ExpandPath(valueOr(c.DataDir, defaultDataDir))
	c.LogDir = ExpandPath(valueOr(c.LogDir, defaultLogDir))
	c.MediaDir = ExpandPath(valueOr(c.MediaDir, defaultMediaDir))
	c.APIBind = valueOr(c.APIBind, defaultAPIBind)
	c.BaseURL = strings.TrimRight(valueOr(c.BaseURL, defaultOMDBBaseURL), "/")
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxConcurrentWorkers <= 0 {
		c.MaxConcurrentWorkers = defaultMaxConcurrentWorkers
	}
	if c.RetryLimit <= 0 {
		c.RetryLimit = defaultRetryLimit
	}
	if c.BackoffBaseMs <= 0 {
		c.BackoffBaseMs = defaultBackoffBaseMs
	}
	c.LogLevel = strings.ToLower(valueOr(c.LogLevel, defaultLogLevel))
	c.LogFormat = strings.ToLower(valueOr(c.LogFormat, defaultLogFormat))
}

// DatabasePath returns the location of the catalog SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}

// LockPath returns the location of the sync writer lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "sync.lock")
}

// EnsureDirectories creates the directories the store and logger rely on.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) (string, error) {
	resolved := ExpandPath(strings.TrimSpace(path))
	if resolved == "" {
		resolved = ExpandPath(DefaultConfigPath())
	}
	if _, err := os.Stat(resolved); err == nil {
		return resolved, fmt.Errorf("config file %s already exists", resolved)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return resolved, fmt.Errorf("stat config %s: %w", resolved, err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return resolved, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(sampleConfig), 0o644); err != nil {
		return resolved, fmt.Errorf("write sample config: %w", err)
	}
	return resolved, nil
}

// ExpandPath resolves a leading tilde against the current user's home directory.
func ExpandPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if trimmed == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return trimmed
	}
	if strings.HasPrefix(trimmed, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, trimmed[2:])
		}
	}
	return trimmed
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
