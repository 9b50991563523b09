// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, YAML files and environment overrides
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8080/api/messages", cfg.Gateway.RelayURL)
	assert.Equal(t, 2048, cfg.Gateway.MaxTokens)
	assert.Equal(t, 500*time.Millisecond, cfg.Agent.Pace)
	assert.Equal(t, 3*time.Second, cfg.Agent.HighlightTTL)
	assert.Equal(t, 20, cfg.Agent.HistoryLimit)
	assert.Equal(t, "", cfg.Relay.APIKey)
	assert.Equal(t, filepath.Join(DataDir(), "crm.db"), cfg.DBPath)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env")
	t.Setenv("SALESFLOW_SERVER_ADDR", ":9999")

	path := writeConfig(t, `
gateway:
  model: claude-test
  max_tokens: 512
agent:
  pace: 0s
  highlight_ttl: 5s
  strict: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude-test", cfg.Gateway.Model)
	assert.Equal(t, 512, cfg.Gateway.MaxTokens)
	assert.Equal(t, time.Duration(0), cfg.Agent.Pace)
	assert.Equal(t, 5*time.Second, cfg.Agent.HighlightTTL)
	assert.True(t, cfg.Agent.Strict)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "sk-from-env", cfg.Relay.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ANTHROPIC_API_KEY=sk-dotenv\n"), 0644))
	t.Setenv("ANTHROPIC_API_KEY", "")
	os.Unsetenv("ANTHROPIC_API_KEY")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-dotenv", cfg.Relay.APIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(writeConfig(t, "gateway:\n  max_tokens: 0\n"))
	require.Error(t, err)
}
