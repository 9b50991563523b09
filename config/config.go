// ABOUTME: Application configuration loaded with viper
// ABOUTME: Merges defaults, config.yaml under XDG config, .env and SALESFLOW_ env vars
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AppName   = "salesflow"
	EnvPrefix = "SALESFLOW"
)

type Config struct {
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`

	Server  ServerConfig  `mapstructure:"server"`
	Relay   RelayConfig   `mapstructure:"relay"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Charm   CharmConfig   `mapstructure:"charm"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RelayConfig configures the Messages API relay. APIKey is read from
// ANTHROPIC_API_KEY and never written to disk by this package.
type RelayConfig struct {
	Addr     string        `mapstructure:"addr"`
	Upstream string        `mapstructure:"upstream"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type GatewayConfig struct {
	RelayURL  string        `mapstructure:"relay_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type AgentConfig struct {
	Pace         time.Duration `mapstructure:"pace"`
	HighlightTTL time.Duration `mapstructure:"highlight_ttl"`
	HistoryLimit int           `mapstructure:"history_limit"`
	Strict       bool          `mapstructure:"strict"`
}

// CharmConfig selects the tour library backend. Offline uses a local
// badger directory instead of the charm cloud.
type CharmConfig struct {
	Offline bool   `mapstructure:"offline"`
	Dir     string `mapstructure:"dir"`
}

// ConfigDir is where config.yaml is looked up.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir holds the database and the offline library.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", filepath.Join(DataDir(), "crm.db"))
	v.SetDefault("log_level", "info")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("relay.addr", ":3000")
	v.SetDefault("relay.upstream", "https://api.anthropic.com/v1/messages")
	v.SetDefault("relay.api_key", "")
	v.SetDefault("relay.timeout", 2*time.Minute)

	v.SetDefault("gateway.relay_url", "http://localhost:8080/api/messages")
	v.SetDefault("gateway.model", "claude-3-5-sonnet-20240620")
	v.SetDefault("gateway.max_tokens", 2048)
	v.SetDefault("gateway.timeout", 2*time.Minute)

	v.SetDefault("agent.pace", 500*time.Millisecond)
	v.SetDefault("agent.highlight_ttl", 3*time.Second)
	v.SetDefault("agent.history_limit", 20)
	v.SetDefault("agent.strict", false)

	v.SetDefault("charm.offline", false)
	v.SetDefault("charm.dir", filepath.Join(DataDir(), "library"))
}

// Load reads configuration. An explicit path must exist; otherwise
// config.yaml in ConfigDir is optional. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("relay.api_key", EnvPrefix+"_RELAY_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Gateway.MaxTokens <= 0 {
		return fmt.Errorf("gateway.max_tokens must be positive, got %d", c.Gateway.MaxTokens)
	}
	if c.Agent.Pace < 0 {
		return fmt.Errorf("agent.pace must not be negative")
	}
	if c.Agent.HighlightTTL <= 0 {
		return fmt.Errorf("agent.highlight_ttl must be positive")
	}
	if c.Agent.HistoryLimit <= 0 {
		return fmt.Errorf("agent.history_limit must be positive")
	}
	return nil
}

// EnsureDataDir creates the data directory.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0755)
}
