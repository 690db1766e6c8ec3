package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mtakada173/kibela-to-kibela/internal/kibela"
)

var subdomainRe = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Config represents the full importer configuration, merged from the
// optional YAML config file, environment variables, and command-line flags.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Kibela KibelaConfig      `yaml:"kibela"`
	Import ImportConfig      `yaml:"import"`
}

// Validate validates the merged configuration. Any failure here is fatal
// and aborts the run before any archive entry is touched.
func (c *Config) Validate() error {
	if err := c.Kibela.Validate(); err != nil {
		return err
	}
	if err := c.Import.Validate(); err != nil {
		return err
	}
	if c.Import.Apply {
		if c.Kibela.Team == "" && c.Kibela.Endpoint == "" {
			return fmt.Errorf("kibela: a destination team (or endpoint) is required in apply mode")
		}
		if c.Kibela.Token == "" {
			return fmt.Errorf("kibela: an access token is required in apply mode")
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// KibelaConfig holds the destination team connection settings.
type KibelaConfig struct {
	Team      string `yaml:"team"`
	Token     string `yaml:"token"`
	Endpoint  string `yaml:"endpoint"`
	PageSize  int    `yaml:"page_size"`
	UserAgent string `yaml:"user_agent"`
}

// EndpointURL returns the configured endpoint override, or the canonical
// endpoint derived from the team subdomain.
func (c *KibelaConfig) EndpointURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return kibela.DefaultEndpoint(c.Team)
}

// Validate validates the connection settings.
func (c *KibelaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Team, validation.Match(subdomainRe)),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// ImportConfig holds the knobs for one import run.
type ImportConfig struct {
	Apply         bool   `yaml:"apply"`
	ExportedFrom  string `yaml:"exported_from"`
	PrivateGroups bool   `yaml:"private_groups"`
}

// Validate validates the import settings.
func (c *ImportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ExportedFrom, validation.Required, validation.Match(subdomainRe)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Kibela: KibelaConfig{
			PageSize:  100,
			UserAgent: "kibela-to-kibela",
		},
	}
}
