// Package config provides configuration file and environment variable support for gtadmin.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Config file (~/.gtadmin/config.toml)
//  4. Built-in defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultStorageKey is the versioned slot the store snapshot is saved under.
// Bump the suffix when the snapshot shape changes incompatibly.
const DefaultStorageKey = "gerustthuis-admin-v2"

// Config represents the gtadmin configuration.
type Config struct {
	// DB is the path to the database file.
	// Default: ~/.gtadmin/gtadmin.db
	DB string `toml:"db"`

	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`

	// StorageKey is the key of the snapshot slot.
	// Default: gerustthuis-admin-v2
	StorageKey string `toml:"storage_key"`

	// TicketPrefix is prepended to generated ticket numbers (GT-062).
	// Default: GT
	TicketPrefix string `toml:"ticket_prefix"`

	Server  ServerConfig  `toml:"server"`
	Backend BackendConfig `toml:"backend"`
	Backup  BackupConfig  `toml:"backup"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BackendConfig holds the hosted database/auth service settings.
// The backend is disabled when URL is empty.
type BackendConfig struct {
	URL            string   `toml:"url"`
	AnonKey        string   `toml:"anon_key"`
	AllowedEmails  []string `toml:"allowed_emails"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Enabled returns true if a backend URL is configured.
func (b BackendConfig) Enabled() bool {
	return b.URL != ""
}

// BackupConfig controls rotating copies of the database file.
type BackupConfig struct {
	Enabled       bool   `toml:"enabled"`
	IntervalHours int    `toml:"interval_hours"`
	MaxCount      int    `toml:"max_count"`
	Path          string `toml:"path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DB:           "", // Empty means use db.DefaultDBPath
		StorageKey:   DefaultStorageKey,
		TicketPrefix: "GT",
		Server: ServerConfig{
			Host: "localhost",
			Port: 18090,
		},
		Backend: BackendConfig{
			AllowedEmails:  []string{"dirk.bakker@gmx.net"},
			TimeoutSeconds: 30,
		},
		Backup: BackupConfig{
			Enabled:       true,
			IntervalHours: 24,
			MaxCount:      5,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gtadmin", "config.toml")
}

// Load loads configuration from the config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() {
	if db := os.Getenv("GTADMIN_DB"); db != "" {
		c.DB = db
	}
	// GTADMIN_DB_PATH takes precedence over GTADMIN_DB (more explicit name)
	if dbPath := os.Getenv("GTADMIN_DB_PATH"); dbPath != "" {
		c.DB = dbPath
	}

	if _, ok := os.LookupEnv("GTADMIN_NO_COLOR"); ok {
		c.NoColor = true
	}

	if key := os.Getenv("GTADMIN_STORAGE_KEY"); key != "" {
		c.StorageKey = key
	}
	if prefix := os.Getenv("GTADMIN_TICKET_PREFIX"); prefix != "" {
		c.TicketPrefix = strings.ToUpper(prefix)
	}

	if port := os.Getenv("GTADMIN_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}

	if url := os.Getenv("GTADMIN_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if key := os.Getenv("GTADMIN_BACKEND_KEY"); key != "" {
		c.Backend.AnonKey = key
	}
	if emails := os.Getenv("GTADMIN_ALLOWED_EMAILS"); emails != "" {
		var list []string
		for _, e := range strings.Split(emails, ",") {
			if e = strings.TrimSpace(e); e != "" {
				list = append(list, e)
			}
		}
		c.Backend.AllowedEmails = list
	}
}

// GetDB returns the database path, or empty to signal use of db.DefaultDBPath.
func (c *Config) GetDB() string {
	return c.DB
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# gtadmin Configuration File
# Location: ~/.gtadmin/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (GTADMIN_*)
#   3. This config file
#   4. Built-in defaults

# Path to the database file
# Default: ~/.gtadmin/gtadmin.db
# Environment: GTADMIN_DB or GTADMIN_DB_PATH (GTADMIN_DB_PATH takes precedence)
# db = "/path/to/gtadmin.db"

# Disable colored output
# Environment: GTADMIN_NO_COLOR (any value = true)
# no_color = false

# Snapshot slot key. Changing it starts from the seed project plan.
# Environment: GTADMIN_STORAGE_KEY
# storage_key = "gerustthuis-admin-v2"

# Prefix of generated ticket numbers
# Environment: GTADMIN_TICKET_PREFIX
# ticket_prefix = "GT"

[server]
# host = "localhost"
# port = 18090          # Environment: GTADMIN_SERVER_PORT

[backend]
# Hosted database/auth service. Leave url empty to disable.
# url = "https://example.supabase.co"   # Environment: GTADMIN_BACKEND_URL
# anon_key = ""                         # Environment: GTADMIN_BACKEND_KEY
# allowed_emails = ["dirk.bakker@gmx.net"]  # Environment: GTADMIN_ALLOWED_EMAILS (comma-separated)
# timeout_seconds = 30

[backup]
# enabled = true
# interval_hours = 24
# max_count = 5
# path = ""             # Default: next to the database file
`
}

// WriteConfigFile writes the sample config file to the specified path.
// Creates parent directories if needed.
func WriteConfigFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0644)
}
