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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Editor.Debounce)
	assert.Equal(t, "uuid", cfg.IDs.Strategy)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9000
storage:
  backend: memory
editor:
  debounce: 250ms
ids:
  strategy: snowflake
  node: 7
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 1234, cfg.Server.RelayPort)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Editor.Debounce)
	assert.Equal(t, "snowflake", cfg.IDs.Strategy)
	assert.EqualValues(t, 7, cfg.IDs.Node)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SKILLSYNC_STORAGE_BACKEND", "redis")
	t.Setenv("SKILLSYNC_HTTP_PORT", "8181")

	cfg, err := Load(writeConfig(t, "storage:\n  backend: sqlite\n"))
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, 8181, cfg.Server.HTTPPort)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"backend":  "storage:\n  backend: floppy\n",
		"strategy": "ids:\n  strategy: clock\n",
		"peers":    "relay:\n  max_peers: 0\n",
		"yaml":     "server: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsBadPortEnv(t *testing.T) {
	t.Setenv("SKILLSYNC_RELAY_PORT", "abc")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
