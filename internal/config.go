package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
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
	App        ApplicationConfig `yaml:"app" toml:"app"`
	Vault      VaultConfig       `yaml:"vault" toml:"vault"`
	Ingest     IngestConfig      `yaml:"ingest" toml:"ingest"`
	SQLite     SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth       AuthConfig        `yaml:"auth" toml:"auth"`
	Dictionary DictionaryConfig  `yaml:"dictionary" toml:"dictionary"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Ingest.Validate(); err != nil {
		return err
	}
	if err := c.Dictionary.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
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

// VaultConfig describes the vault root and its flat directories. Directory
// names are relative to Root.
type VaultConfig struct {
	Root        string   `yaml:"root" toml:"root"`
	Drafts      string   `yaml:"drafts" toml:"drafts"`
	References  string   `yaml:"references" toml:"references"`
	Attachments string   `yaml:"attachments" toml:"attachments"`
	Templates   string   `yaml:"templates" toml:"templates"`
	Daily       string   `yaml:"daily" toml:"daily"`
	SearchDirs  []string `yaml:"search_dirs" toml:"search_dirs"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Drafts, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.References, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.Attachments, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.Templates, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.Daily, validation.Required, validation.By(relativeDir)),
	); err != nil {
		return err
	}
	for _, d := range c.SearchDirs {
		if err := relativeDir(d); err != nil {
			return fmt.Errorf("vault: search_dirs: %w", err)
		}
	}
	return nil
}

// DocumentDirs returns the directories scanned for references: references,
// daily, drafts and templates, followed by any extra search_dirs.
func (c *VaultConfig) DocumentDirs() []string {
	dirs := []string{c.References, c.Daily, c.Drafts, c.Templates}
	for _, d := range c.SearchDirs {
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func relativeDir(value any) error {
	s, _ := value.(string)
	if s == "." || s == ".." || filepath.IsAbs(s) || filepath.Clean(s) != filepath.Base(filepath.Clean(s)) {
		return fmt.Errorf("must be a single directory name under the vault root, got %q", s)
	}
	return nil
}

// IngestConfig controls the draft ingestion pipeline.
type IngestConfig struct {
	KeepSource bool     `yaml:"keep_source" toml:"keep_source"`
	Template   string   `yaml:"template" toml:"template"`
	Extensions []string `yaml:"extensions" toml:"extensions"`

	// Debounce delays watcher-driven ingestion until writes settle.
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Validate validates the ingest configuration.
func (c *IngestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Template, validation.Required),
		validation.Field(&c.Extensions, validation.Required),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig holds SQLite database configuration. An empty Path disables
// indexing of ingested notes.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
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

// DictionaryConfig configures the word lookup service used by the word command.
type DictionaryConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// Validate validates the dictionary configuration.
func (c *DictionaryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Timeout, validation.Required),
	)
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
			Root:        ".",
			Drafts:      "Drafts",
			References:  "References",
			Attachments: "Attachments",
			Templates:   "Templates",
			Daily:       "Daily",
		},
		Ingest: IngestConfig{
			Template:   "note",
			Extensions: []string{".md", ".txt"},
			Debounce:   500 * time.Millisecond,
		},
		SQLite: SQLiteConfig{
			Path: ".inkwell.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Dictionary: DictionaryConfig{
			BaseURL: "https://api.dictionaryapi.dev/api/v2/entries/en",
			Timeout: 10 * time.Second,
		},
	}
}
