// ABOUTME: Settings for the Charm KV store behind the tour library
// ABOUTME: Persists host and auto-sync preferences next to the local data
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// DefaultCharmHost is the self-hosted charm server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the Charm KV database and the local data directory.
	AppName = "salesflow"

	ConfigFileName = "charm-config.json"
)

// Config holds charm connection settings.
type Config struct {
	Host string `json:"host,omitempty"`

	// AutoSync pushes to the charm server after every write.
	AutoSync bool `json:"auto_sync"`
}

// DefaultConfig keeps the library local until sync is switched on.
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultCharmHost,
		AutoSync: false,
	}
}

func configPath() (string, error) {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, ConfigFileName), nil
}

// LoadConfig reads the saved config, falling back to defaults when the file
// is missing or unreadable.
func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), nil //nolint:nilerr // no data dir means no saved settings
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read charm config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), nil //nolint:nilerr // a corrupt file is treated as unset
	}
	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	return cfg, nil
}

func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAutoSync(enabled bool) error {
	c.AutoSync = enabled
	return c.Save()
}

func (c *Config) SetHost(host string) error {
	c.Host = host
	return c.Save()
}
