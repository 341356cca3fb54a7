package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
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
	Agenda AgendaConfig      `yaml:"agenda"`
	Search SearchConfig      `yaml:"search"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Agenda.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
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

// AgendaConfig locates the Agenda store and bounds queries against it.
type AgendaConfig struct {
	DBPath       string        `yaml:"db_path"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	Limit        int           `yaml:"limit"`
}

// Validate validates the Agenda configuration.
func (c *AgendaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.QueryTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Limit, validation.Min(0)),
	)
}

// ResolvedPath returns DBPath with a leading ~ expanded to the home directory.
func (c *AgendaConfig) ResolvedPath() string {
	if c.DBPath == "~" || strings.HasPrefix(c.DBPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(c.DBPath, "~"))
		}
	}
	return c.DBPath
}

// SearchConfig controls how results are assembled.
type SearchConfig struct {
	Timezone string `yaml:"timezone"`
	Workers  int    `yaml:"workers"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("search: timezone: %w", err)
	}
	return nil
}

// Location returns the zone dates are shown in. Empty or "Local" means the
// machine's zone.
func (c *SearchConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// AuthConfig holds authentication configuration for the HTTP surface.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// DefaultDBPath is where Agenda keeps its store on macOS.
const DefaultDBPath = "~/Library/Containers/com.momenta.agenda.macos/Data/Library/Application Support/Agenda/Agenda.sqlite"

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Agenda: AgendaConfig{
			DBPath:       DefaultDBPath,
			QueryTimeout: 5 * time.Second,
		},
		Search: SearchConfig{
			Timezone: "Local",
			Workers:  4,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
