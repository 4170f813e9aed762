// Package config handles the XDG configuration directory, config.yaml and file paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todosync"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// SessionFile stores the REST backend's session cookies.
	SessionFile = "session.json"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TODOSYNC_API_KEY.
	EnvPrefix = "TODOSYNC"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

const (
	// DefaultBaseURL is the remote todo API root.
	DefaultBaseURL = "https://social-network.samuraijs.com/api/1.1/"

	// DefaultTimeout bounds a single remote call.
	DefaultTimeout = 10 * time.Second
)

// Settings are the values read from config.yaml and the environment.
type Settings struct {
	Backend     string        `mapstructure:"backend" yaml:"backend"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BearerToken string        `mapstructure:"bearer_token" yaml:"bearer_token"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Debug       bool          `mapstructure:"debug" yaml:"debug"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded from config.yaml.
	Settings Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todosync or $HOME/.config/todosync.
// Settings come from config.yaml in that directory when present, then from
// TODOSYNC_* environment variables.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	settings, err := loadSettings(cfg.ConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	cfg.Debug = settings.Debug
	return cfg, nil
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendREST,
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

func loadSettings(path string) (Settings, error) {
	def := DefaultSettings()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("backend", def.Backend)
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("api_key", "")
	v.SetDefault("bearer_token", "")
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("debug", false)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Settings{}, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings for values no backend can use.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendREST, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", s.Backend)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", s.Timeout)
	}
	if s.Backend == BackendREST && !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("invalid base_url: %s", s.BaseURL)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session cookies.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// Redacted returns the settings with secrets masked for display.
func (s Settings) Redacted() Settings {
	mask := func(v string) string {
		if v == "" {
			return ""
		}
		return "********"
	}
	s.APIKey = mask(s.APIKey)
	s.BearerToken = mask(s.BearerToken)
	return s
}
