package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Analysis AnalysisConfig `toml:"analysis"`
	Watcher  WatcherConfig  `toml:"watcher"`
	Storage  StorageConfig  `toml:"storage"`
}

type ServerConfig struct {
	Mode string `toml:"mode"`
	Port int    `toml:"port"`
}

type AnalysisConfig struct {
	MaxASTDepth  int  `toml:"max_ast_depth"` // -1 for no limit
	CacheEnabled bool `toml:"cache_enabled"`
	CacheSize    int  `toml:"cache_size"`
	Workers      int  `toml:"workers"`
}

type WatcherConfig struct {
	DebounceMs       int      `toml:"debounce_ms"`
	Exclude          []string `toml:"exclude"`
	RespectGitignore bool     `toml:"respect_gitignore"`
}

// StorageConfig configures publishing of call graphs to SurrealDB.
type StorageConfig struct {
	Enabled   bool   `toml:"enabled"`
	URL       string `toml:"url"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from file
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		// Try default locations
		locations := []string{
			".treesitter-mcp/config.toml",
			filepath.Join(os.Getenv("HOME"), ".treesitter-mcp/config.toml"),
			"/etc/treesitter-mcp/config.toml",
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				if _, err := toml.DecodeFile(loc, cfg); err == nil {
					break
				}
			}
		}
	}

	// Override with environment variables
	applyEnvOverrides(cfg)

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Mode: "stdio",
			Port: 3003,
		},
		Analysis: AnalysisConfig{
			MaxASTDepth:  -1,
			CacheEnabled: true,
			CacheSize:    256,
			Workers:      4,
		},
		Watcher: WatcherConfig{
			DebounceMs: 100,
			Exclude: []string{
				".git",
				"node_modules",
				"vendor",
				"target",
				"build",
				"dist",
				"__pycache__",
				".venv",
				"*.min.js",
			},
			RespectGitignore: true,
		},
		Storage: StorageConfig{
			Enabled:   false,
			URL:       "ws://localhost:3004",
			Namespace: "treesitter",
			Database:  "main",
			Username:  "root",
			Password:  "root",
		},
	}
}

func Validate(cfg *Config) []string {
	var warnings []string

	// Validate server settings
	if cfg.Server.Mode != "stdio" && cfg.Server.Mode != "http" {
		warnings = append(warnings, "Server mode must be 'stdio' or 'http'")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		warnings = append(warnings, "Server port must be between 1 and 65535")
	}

	// Validate analysis settings
	if cfg.Analysis.MaxASTDepth < -1 {
		warnings = append(warnings, "Analysis max_ast_depth must be -1 (unlimited) or a non-negative depth")
	}
	if cfg.Analysis.CacheEnabled && cfg.Analysis.CacheSize < 1 {
		warnings = append(warnings, "Analysis cache is enabled but cache_size is less than 1")
	}
	if cfg.Analysis.Workers < 1 {
		warnings = append(warnings, "Analysis workers must be at least 1")
	}
	if cfg.Analysis.Workers > 256 {
		warnings = append(warnings, "Analysis workers exceeds reasonable maximum (256)")
	}

	// Validate watcher settings
	if cfg.Watcher.DebounceMs < 10 {
		warnings = append(warnings, "Watcher debounce must be at least 10ms")
	}
	if cfg.Watcher.DebounceMs > 60000 {
		warnings = append(warnings, "Watcher debounce exceeds reasonable maximum (60000ms)")
	}

	// Validate storage settings
	if cfg.Storage.Enabled {
		if cfg.Storage.URL == "" {
			warnings = append(warnings, "SurrealDB URL cannot be empty")
		}
		if cfg.Storage.Namespace == "" {
			warnings = append(warnings, "SurrealDB namespace cannot be empty")
		}
		if cfg.Storage.Database == "" {
			warnings = append(warnings, "SurrealDB database cannot be empty")
		}
	}

	return warnings
}

func applyEnvOverrides(cfg *Config) {
	// Server settings
	if v := os.Getenv("TSMCP_MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv("TSMCP_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = i
		}
	}

	// Analysis settings
	if v := os.Getenv("TSMCP_MAX_AST_DEPTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MaxASTDepth = i
		}
	}
	if v := os.Getenv("TSMCP_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analysis.CacheEnabled = b
		}
	}
	if v := os.Getenv("TSMCP_CACHE_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.CacheSize = i
		}
	}
	if v := os.Getenv("TSMCP_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Workers = i
		}
	}

	// Watcher settings
	if v := os.Getenv("TSMCP_WATCHER_DEBOUNCE_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Watcher.DebounceMs = i
		}
	}
	if v := os.Getenv("TSMCP_WATCHER_EXCLUDE"); v != "" {
		cfg.Watcher.Exclude = strings.Split(v, ",")
	}

	// Storage settings
	if v := os.Getenv("TSMCP_STORAGE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.Enabled = b
		}
	}
	if v := os.Getenv("TSMCP_SURREALDB_URL"); v != "" {
		cfg.Storage.URL = v
	}
	if v := os.Getenv("TSMCP_SURREALDB_NAMESPACE"); v != "" {
		cfg.Storage.Namespace = v
	}
	if v := os.Getenv("TSMCP_SURREALDB_DATABASE"); v != "" {
		cfg.Storage.Database = v
	}
	if v := os.Getenv("TSMCP_SURREALDB_USERNAME"); v != "" {
		cfg.Storage.Username = v
	}
	if v := os.Getenv("TSMCP_SURREALDB_PASSWORD"); v != "" {
		cfg.Storage.Password = v
	}
}
