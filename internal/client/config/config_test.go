package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Empty(t, c.AdminPassword)
	assert.Equal(t, "50MiB", c.MaxFileSize)
	assert.Equal(t, 5*time.Minute, c.Timeout)
}

func TestParseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"server_url": "https://fotos.example",
		"timeout":    "45s",
	})

	t.Run("overlays present keys", func(t *testing.T) {
		os.Args = []string{"eventctl", "-c", path, "list-events"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "https://fotos.example", cfg.ServerURL)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
		assert.Equal(t, "50MiB", cfg.MaxFileSize)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"eventctl", "list-events"}

		cfg := &Config{ServerURL: "keep"}
		parseJson(cfg)
		assert.Equal(t, "keep", cfg.ServerURL)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"eventctl", "-config", filepath.Join(t.TempDir(), "nope.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestParseEnv(t *testing.T) {
	t.Setenv("EVENTDROP_SERVER_URL", "http://env:1")
	t.Setenv("EVENTDROP_ADMIN_PASSWORD", "envpw")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "http://env:1", cfg.ServerURL)
	assert.Equal(t, "envpw", cfg.AdminPassword)
	assert.Equal(t, "50MiB", cfg.MaxFileSize)
}
