// Package config provides YAML-based configuration loading for Stationmaster.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Stationmaster configuration, loaded from
// stationmaster.yaml.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Paths     PathsConfig     `yaml:"paths"`
	Managers  ManagersConfig  `yaml:"managers"`
	Directory DirectoryConfig `yaml:"directory"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// TelegramConfig holds transport credentials.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// PathsConfig holds filesystem locations the daemon reads and writes.
type PathsConfig struct {
	Sessions string `yaml:"sessions"` // append-only session log (JSON lines)
	Media    string `yaml:"media"`    // root directory for downloaded attachments
	Guide    string `yaml:"guide"`    // user-guide document sent to managers on /start
}

// ManagersConfig holds the well-known manager chat IDs.
type ManagersConfig struct {
	Default   int64 `yaml:"default"`   // fallback when no responsible manager is found
	Documents int64 `yaml:"documents"` // receives documents-topic tickets
	Admin     int64 `yaml:"admin"`     // the only manager allowed to run /refresh
}

// DirectoryConfig holds connection settings for the CRM directory database.
type DirectoryConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	RefreshCron string `yaml:"refresh_cron"` // optional 5-field cron for automatic resync
}

// DashboardConfig holds settings for the read-only ops HTTP server.
type DashboardConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Paths.Sessions == "" {
		c.Paths.Sessions = "sessions.jsonl"
	}
	if c.Paths.Media == "" {
		c.Paths.Media = "media"
	}
	if c.Managers.Documents == 0 {
		c.Managers.Documents = c.Managers.Default
	}
	if c.Directory.Host == "" {
		c.Directory.Host = "127.0.0.1"
	}
	if c.Directory.Port == 0 {
		c.Directory.Port = 3306
	}
	if c.Directory.User == "" {
		c.Directory.User = "root"
	}
	if c.Directory.TimeoutSec == 0 {
		c.Directory.TimeoutSec = 5
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Telegram.Token == "" {
		errs = append(errs, "telegram.token is required")
	}
	if c.Managers.Default == 0 {
		errs = append(errs, "managers.default is required")
	}
	if c.Managers.Admin == 0 {
		errs = append(errs, "managers.admin is required")
	}
	if c.Directory.Database == "" {
		errs = append(errs, "directory.database is required")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
