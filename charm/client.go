// ABOUTME: Charm KV client holding the tour content library
// ABOUTME: Wraps kv with a lock, optional auto-sync and a badger test backend
package charm

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

// kvStore is the subset of kv.KV the library needs. The test backend
// implements it on a bare badger database.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	Close() error
}

// Client is safe for concurrent use.
type Client struct {
	store  kvStore
	config *Config
	local  bool
	mu     sync.RWMutex
}

// NewClient opens the charm KV database for AppName.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// kv reads the server host from the environment.
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{store: db, config: cfg}
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm account id of this device.
func (c *Client) ID() (string, error) {
	if c.local {
		return "local", nil
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

func (c *Client) IsConnected() bool {
	_, err := c.ID()
	return err == nil
}

func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Sync()
}

func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Get(key)
}

// Set stores a value and syncs when auto-sync is on.
func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(key, value); err != nil {
		return err
	}
	if c.config.AutoSync {
		_ = c.store.Sync()
	}
	return nil
}

func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(key); err != nil {
		return err
	}
	if c.config.AutoSync {
		_ = c.store.Sync()
	}
	return nil
}

func (c *Client) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Keys()
}

// Reset wipes every key in the store.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Reset()
}

// Close releases the underlying database.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Close()
}
