// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
)

// DatabaseConfig holds the three settings consumed by the connection provider.
type DatabaseConfig struct {
	URL      string `env:"DB_URL" envDefault:"mysql://localhost:3306/AddressBook"`
	Username string `env:"DB_USERNAME" envDefault:"root"`
	// Password is removed from the process environment once read.
	Password string `env:"DB_PASSWORD,unset"`
}

// Validate reports a configuration error for missing required settings.
func (c DatabaseConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return apperrors.New(apperrors.ErrConfiguration, "DB_URL must not be empty")
	}
	if c.Password == "" {
		return apperrors.New(apperrors.ErrConfiguration,
			"DB_PASSWORD is required: set it in the environment before starting the address book")
	}
	return nil
}

// String renders the config without the password.
func (c DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{URL:%s Username:%s Password:<redacted>}", c.URL, c.Username)
}

// Config is the full process configuration.
type Config struct {
	Database DatabaseConfig
	LogLevel string `env:"ADDRESSBOOK_LOG_LEVEL" envDefault:"INFO"`
	HTTPAddr string `env:"ADDRESSBOOK_HTTP_ADDR" envDefault:"127.0.0.1:8090"`
	// Username keys the persisted UI preferences.
	Username string `env:"ADDRESSBOOK_USER" envDefault:"default"`
	Backup   BackupConfig
}

// BackupConfig controls the periodic CSV backup.
type BackupConfig struct {
	Interval  string `env:"ADDRESSBOOK_BACKUP_INTERVAL" envDefault:"manual"`
	Dir       string `env:"ADDRESSBOOK_BACKUP_DIR" envDefault:"backups"`
	Retention int    `env:"ADDRESSBOOK_BACKUP_RETENTION" envDefault:"5"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "invalid environment", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
