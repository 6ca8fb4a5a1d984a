package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heefoo/treesitter-mcp/internal/analyzer"
	"github.com/heefoo/treesitter-mcp/internal/config"
	"github.com/heefoo/treesitter-mcp/internal/graph"
	"github.com/heefoo/treesitter-mcp/pkg/mcp"
)

const version = "0.2.0"

// errReported means the failure was already written to stderr.
var errReported = errors.New("analysis failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "treesitter-mcp",
		Short:         "Tree-sitter code analysis over MCP and the command line",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		for _, w := range config.Validate(cfg) {
			log.Printf("Warning: %s", w)
		}
		return cfg, nil
	}

	rootCmd.AddCommand(serveCmd(loadConfig))
	rootCmd.AddCommand(analyzeCmd(loadConfig))
	rootCmd.AddCommand(languagesCmd())
	rootCmd.AddCommand(watchCmd(loadConfig))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func serveCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:       "serve [stdio|http]",
		Short:     "Start the MCP server",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"stdio", "http"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mode := cfg.Server.Mode
			if len(args) > 0 {
				mode = args[0]
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			serverCfg := mcp.ServerConfig{Config: cfg}
			if cfg.Storage.Enabled {
				storage, err := openStorage(cfg)
				if err != nil {
					log.Printf("Warning: graph tools disabled: %v", err)
				} else {
					defer storage.Close()
					serverCfg.Graph = storage
				}
			}
			server := mcp.NewServer(serverCfg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			switch mode {
			case "stdio":
				return server.ServeStdio(ctx)
			case "http":
				return server.ServeHTTP(ctx, cfg.Server.Port)
			}
			return fmt.Errorf("unknown mode: %s", mode)
		},
	}

	cmd.Flags().IntVar(&port, "port", 3003, "HTTP server port")
	return cmd
}

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and their extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), analyzer.SupportedLanguages())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "treesitter-mcp v%s\n", version)
		},
	}
}

func openStorage(cfg *config.Config) (*graph.Storage, error) {
	return graph.NewStorage(graph.StorageConfig{
		URL:       cfg.Storage.URL,
		Namespace: cfg.Storage.Namespace,
		Database:  cfg.Storage.Database,
		Username:  cfg.Storage.Username,
		Password:  cfg.Storage.Password,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
