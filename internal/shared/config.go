package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	SoundCloud SoundCloudConfig `toml:"soundcloud"`
}

// SoundCloudConfig contains the registered SoundCloud application credentials.
type SoundCloudConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// placeholderPrefix marks the unset values of config.example.toml.
const placeholderPrefix = "your_"

// Validate reports an [ErrMissingCredentials] error when the client id or secret is empty or still a placeholder.
func (c SoundCloudConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: soundcloud client_id is not set", ErrMissingCredentials)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("%w: soundcloud client_secret is not set", ErrMissingCredentials)
	}
	if strings.HasPrefix(c.ClientID, placeholderPrefix) || strings.HasPrefix(c.ClientSecret, placeholderPrefix) {
		return fmt.Errorf("%w: soundcloud credentials still hold the example values", ErrMissingCredentials)
	}
	return nil
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// ParseLevel returns the configured [log.Level], falling back to [log.InfoLevel] for empty or unknown values.
func (l LogConfig) ParseLevel() log.Level {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// RedirectURI returns the configured SoundCloud redirect URI, or the callback URL of the local server when unset.
func (c *Config) RedirectURI() string {
	if c.Credentials.SoundCloud.RedirectURI != "" {
		return c.Credentials.SoundCloud.RedirectURI
	}
	return fmt.Sprintf("http://%s/callback", c.Server.Addr())
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
