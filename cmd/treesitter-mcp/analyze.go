package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heefoo/treesitter-mcp/internal/analyzer"
	"github.com/heefoo/treesitter-mcp/internal/config"
	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/heefoo/treesitter-mcp/internal/util"
	"github.com/heefoo/treesitter-mcp/pkg/mcp"
)

type analyzeOptions struct {
	callGraph    bool
	ast          bool
	dependencies bool
	findFunction string
	findVariable string
	findUsage    string
	query        string
	language     string
	maxDepth     int
}

// request builds the engine request selected by the flags. Without an
// operation flag the file is fully analyzed.
func (o *analyzeOptions) request(cmd *cobra.Command, path string) analyzer.Request {
	req := analyzer.Request{Operation: analyzer.OpAnalyzeFile, FilePath: path, Language: o.language}
	switch {
	case o.callGraph:
		req.Operation = analyzer.OpGetCallGraph
	case o.ast:
		req.Operation = analyzer.OpGetAST
		if cmd.Flags().Changed("max-depth") {
			depth := o.maxDepth
			req.MaxDepth = &depth
		}
	case o.dependencies:
		req.Operation = analyzer.OpGetDependencies
	case cmd.Flags().Changed("find-function"):
		req.Operation, req.Name = analyzer.OpFindFunction, o.findFunction
	case cmd.Flags().Changed("find-variable"):
		req.Operation, req.Name = analyzer.OpFindVariable, o.findVariable
	case cmd.Flags().Changed("find-usage"):
		req.Operation, req.Name = analyzer.OpFindUsage, o.findUsage
	case cmd.Flags().Changed("query"):
		req.Operation, req.Query = analyzer.OpRunQuery, o.query
	}
	return req
}

func analyzeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <path...>",
		Short: "Analyze source files and print the result as JSON",
		Long: `Analyze one or more source files. Without an operation flag the full
per-file analysis is printed. A directory stands for every supported file
beneath it, honouring the watcher exclude patterns and .gitignore. With
several files or a directory the output is an array of
{filePath, result, error} entries in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine := analyzer.NewEngine(mcp.EngineOptions(cfg)...)

			paths, batch, err := expandPaths(args, cfg)
			if err != nil {
				return err
			}
			reqs := make([]analyzer.Request, 0, len(paths))
			for _, path := range paths {
				reqs = append(reqs, opts.request(cmd, path))
			}
			return runAnalyze(cmd, engine, reqs, batch || len(reqs) != 1)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.callGraph, "call-graph", false, "Print the call graph")
	flags.BoolVar(&opts.ast, "ast", false, "Print the syntax tree")
	flags.IntVar(&opts.maxDepth, "max-depth", -1, "Maximum AST depth, -1 for unlimited")
	flags.BoolVar(&opts.dependencies, "dependencies", false, "Print imports and includes")
	flags.StringVar(&opts.findFunction, "find-function", "", "Find function definitions by name")
	flags.StringVar(&opts.findVariable, "find-variable", "", "Find variable definitions by name")
	flags.StringVar(&opts.findUsage, "find-usage", "", "Find every usage of a name")
	flags.StringVar(&opts.query, "query", "", "Run a tree-sitter query")
	flags.StringVar(&opts.language, "language", "", "Override language detection")
	cmd.MarkFlagsMutuallyExclusive("call-graph", "ast", "dependencies", "find-function", "find-variable", "find-usage", "query")

	return cmd
}

// expandPaths replaces directory arguments with the supported files beneath
// them. batch is set when any argument was a directory.
func expandPaths(args []string, cfg *config.Config) (paths []string, batch bool, err error) {
	for _, arg := range args {
		info, statErr := os.Stat(arg)
		if statErr != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		batch = true
		filter := util.NewFilter(arg, cfg.Watcher.Exclude, cfg.Watcher.RespectGitignore)
		files, err := analyzer.CollectFiles(arg, filter)
		if err != nil {
			return nil, false, err
		}
		paths = append(paths, files...)
	}
	return paths, batch, nil
}

func runAnalyze(cmd *cobra.Command, engine *analyzer.Engine, reqs []analyzer.Request, batch bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !batch {
		result, err := engine.Execute(ctx, reqs[0])
		if err != nil {
			reportError(cmd, reqs[0].FilePath, tserrors.BodyOf(err))
			return errReported
		}
		return writeJSON(cmd.OutOrStdout(), result)
	}

	results := engine.ExecuteAll(ctx, reqs)
	if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	failed := false
	for _, res := range results {
		if res.Error != nil {
			reportError(cmd, res.FilePath, res.Error)
			failed = true
		}
	}
	if failed {
		return errReported
	}
	return nil
}

func reportError(cmd *cobra.Command, path string, body *tserrors.Body) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %s: %s\n", path, body.Kind, body.Message)
}
