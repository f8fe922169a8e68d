package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yaml"
	LocalFileName  = "davquery.yaml"

	EnvURL       = "DAVQUERY_URL"
	EnvUser      = "DAVQUERY_USER"
	EnvPassword  = "DAVQUERY_PASSWORD"
	EnvConfigDir = "DAVQUERY_CONFIG_DIR"

	DefaultParallelism = 4
)

// Config is the on-disk configuration
type Config struct {
	URL            string        `yaml:"url"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password,omitempty"`
	DAVPath        string        `yaml:"dav_path,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	Timezone       string        `yaml:"timezone,omitempty"`
	DateLayout     string        `yaml:"date_layout,omitempty"`
	DatetimeLayout string        `yaml:"datetime_layout,omitempty"`
	DataFile       string        `yaml:"data_file,omitempty"`
	Parallelism    int           `yaml:"parallelism,omitempty"`
}

// Connection holds the server settings a query runs against
type Connection struct {
	BaseURL  string
	Username string
	Password string
	DAVPath  string
}

// Missing returns the names of required settings that are empty
func (c Connection) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

// Complete reports whether every required setting is present
func (c Connection) Complete() bool {
	return len(c.Missing()) == 0
}

// Default returns a configuration with no connection settings
func Default() *Config {
	return &Config{
		Parallelism: DefaultParallelism,
	}
}

// Load reads the configuration. An explicit path must exist; otherwise the
// search paths are tried in order and defaults are used when none exists.
// The returned path is empty when no file was read.
func Load(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := LoadFile(explicit)
		if err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			cfg, err := LoadFile(p)
			if err != nil {
				return nil, "", err
			}
			return cfg, p, nil
		}
	}

	return Default(), "", nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// SearchPaths returns the list of paths to search for config files
func SearchPaths() []string {
	var paths []string

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigFileName))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "davquery", ConfigFileName))
	}

	paths = append(paths, LocalFileName)

	return paths
}

// ApplyEnv overrides connection settings with non-empty environment values
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvURL); v != "" {
		c.URL = v
	}
	if v := getenv(EnvUser); v != "" {
		c.Username = v
	}
	if v := getenv(EnvPassword); v != "" {
		c.Password = v
	}
}

// Validate checks the fields that can be wrong independent of the environment
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Connection returns the server settings
func (c *Config) Connection() Connection {
	return Connection{
		BaseURL:  c.URL,
		Username: c.Username,
		Password: c.Password,
		DAVPath:  c.DAVPath,
	}
}

// Location returns the zone dates are read and rendered in
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DataFilePath returns the saved query file, defaulting to ~/.davquery.json
func (c *Config) DataFilePath() string {
	if c.DataFile != "" {
		return expandHome(c.DataFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".davquery.json"
	}
	return filepath.Join(home, ".davquery.json")
}

// Workers returns the configured parallelism, at least one
func (c *Config) Workers() int {
	if c.Parallelism <= 0 {
		return DefaultParallelism
	}
	return c.Parallelism
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
