package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stdio", cfg.Server.Mode)
	assert.Equal(t, 3003, cfg.Server.Port)
	assert.Equal(t, -1, cfg.Analysis.MaxASTDepth)
	assert.True(t, cfg.Analysis.CacheEnabled)
	assert.Equal(t, 100, cfg.Watcher.DebounceMs)
	assert.Contains(t, cfg.Watcher.Exclude, "node_modules")
	assert.False(t, cfg.Storage.Enabled)
}

// TestConfigValidation verifies configuration validation logic
func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, Validate(cfg), "default config should be valid")

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"debounce too low", func(c *Config) { c.Watcher.DebounceMs = 5 }, "debounce"},
		{"debounce too high", func(c *Config) { c.Watcher.DebounceMs = 70000 }, "debounce"},
		{"bad mode", func(c *Config) { c.Server.Mode = "grpc" }, "mode"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"bad depth", func(c *Config) { c.Analysis.MaxASTDepth = -5 }, "max_ast_depth"},
		{"empty cache", func(c *Config) { c.Analysis.CacheSize = 0 }, "cache_size"},
		{"no workers", func(c *Config) { c.Analysis.Workers = 0 }, "workers"},
		{"storage without url", func(c *Config) { c.Storage.Enabled = true; c.Storage.URL = "" }, "URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			warnings := Validate(cfg)
			require.NotEmpty(t, warnings)
			assert.True(t, strings.Contains(strings.Join(warnings, "\n"), tt.want), "warnings %v", warnings)
		})
	}
}

// TestEnvOverrides verifies environment variable overrides
func TestEnvOverrides(t *testing.T) {
	t.Setenv("TSMCP_WATCHER_DEBOUNCE_MS", "500")
	t.Setenv("TSMCP_CACHE_ENABLED", "false")
	t.Setenv("TSMCP_WORKERS", "not-a-number")
	t.Setenv("TSMCP_WATCHER_EXCLUDE", "dist,*.gen.go")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 500, cfg.Watcher.DebounceMs)
	assert.False(t, cfg.Analysis.CacheEnabled)
	assert.Equal(t, 4, cfg.Analysis.Workers, "unparsable values are ignored")
	assert.Equal(t, []string{"dist", "*.gen.go"}, cfg.Watcher.Exclude)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
mode = "http"
port = 8080

[analysis]
max_ast_depth = 4
workers = 2

[storage]
enabled = true
namespace = "ci"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Server.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Analysis.MaxASTDepth)
	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "ci", cfg.Storage.Namespace)
	// untouched keys keep their defaults
	assert.Equal(t, 256, cfg.Analysis.CacheSize)
	assert.Equal(t, "ws://localhost:3004", cfg.Storage.URL)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nmode ="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
