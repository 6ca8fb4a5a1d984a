package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heefoo/treesitter-mcp/internal/analyzer"
	"github.com/heefoo/treesitter-mcp/internal/config"
	"github.com/heefoo/treesitter-mcp/internal/daemon"
	"github.com/heefoo/treesitter-mcp/pkg/mcp"
)

func watchCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch <dir...>",
		Short: "Re-analyze changed files and publish their call graphs",
		Long: `Watch directories for changes. Every changed file is re-analyzed and,
when storage is enabled in the config, its call graph replaces the file's
previous nodes and edges in SurrealDB.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debounce") {
				cfg.Watcher.DebounceMs = debounceMs
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var publisher daemon.Publisher
			if cfg.Storage.Enabled {
				storage, err := openStorage(cfg)
				if err != nil {
					return err
				}
				defer storage.Close()
				if err := storage.RunMigrations(ctx); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				publisher = storage
			} else {
				log.Println("Storage disabled; changes are analyzed but not published")
			}

			w, err := daemon.NewWatcher(daemon.WatcherConfig{
				Engine:           analyzer.NewEngine(mcp.EngineOptions(cfg)...),
				Publisher:        publisher,
				ExcludePatterns:  cfg.Watcher.Exclude,
				RespectGitignore: cfg.Watcher.RespectGitignore,
				DebounceMs:       cfg.Watcher.DebounceMs,
			})
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer w.Stop()

			if publisher != nil {
				if err := w.IndexAll(ctx, args); err != nil {
					return fmt.Errorf("initial indexing failed: %w", err)
				}
			}

			log.Printf("Watching %v (debounce %dms)", args, cfg.Watcher.DebounceMs)
			if err := w.Watch(ctx, args); err != nil && ctx.Err() == nil {
				return err
			}
			log.Println("Shutting down...")
			return nil
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 100, "Debounce delay in milliseconds")
	return cmd
}
