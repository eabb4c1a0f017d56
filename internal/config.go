package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Index  IndexConfig       `yaml:"index"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory and the folder
// prefixes the engine must never scan.
type VaultConfig struct {
	Path            string   `yaml:"path"`
	ExcludedFolders []string `yaml:"excluded_folders"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IndexConfig holds the index engine settings. Durations are expressed in
// seconds (or milliseconds where noted) to keep the YAML plain.
type IndexConfig struct {
	IndexTag          string `yaml:"index_tag"`
	MetaIndexTag      string `yaml:"meta_index_tag"`
	PriorityTag       string `yaml:"priority_tag"`
	ShowTitle         bool   `yaml:"show_title"`
	UpdateIntervalSec int    `yaml:"update_interval_seconds"`
	DebounceSec       int    `yaml:"debounce_seconds"`
	ModifyDebounceSec int    `yaml:"modify_debounce_seconds"`
	WriteRetries      int    `yaml:"write_retries"`
	RetryBackoffMs    int    `yaml:"retry_backoff_ms"`
}

// UpdateInterval returns the safety-net rescan period.
func (c *IndexConfig) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalSec) * time.Second
}

// Debounce returns the event coalescing window.
func (c *IndexConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceSec) * time.Second
}

// ModifyDebounce returns the longer window applied to edits of index documents.
func (c *IndexConfig) ModifyDebounce() time.Duration {
	return time.Duration(c.ModifyDebounceSec) * time.Second
}

// RetryBackoff returns the initial write retry backoff.
func (c *IndexConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IndexTag, validation.Required),
		validation.Field(&c.MetaIndexTag, validation.Required),
		validation.Field(&c.PriorityTag, validation.Required),
		validation.Field(&c.UpdateIntervalSec, validation.Required, validation.Min(5)),
		validation.Field(&c.DebounceSec, validation.Required, validation.Min(1)),
		validation.Field(&c.ModifyDebounceSec, validation.Required, validation.Min(1)),
		validation.Field(&c.WriteRetries, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.RetryBackoffMs, validation.Required, validation.Min(50)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./ansuz.db",
		},
		Index: IndexConfig{
			IndexTag:          "index",
			MetaIndexTag:      "metaindex",
			PriorityTag:       "priority",
			ShowTitle:         true,
			UpdateIntervalSec: 300,
			DebounceSec:       2,
			ModifyDebounceSec: 10,
			WriteRetries:      3,
			RetryBackoffMs:    250,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
