package analyzer

import (
	"context"
	"io/fs"
	"path/filepath"

	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/heefoo/treesitter-mcp/internal/parser"
	"github.com/heefoo/treesitter-mcp/internal/util"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of one request in a batch. Exactly one of
// Result and Error is set.
type FileResult struct {
	FilePath string         `json:"filePath"`
	Result   any            `json:"result,omitempty"`
	Error    *tserrors.Body `json:"error,omitempty"`
}

// ExecuteAll runs independent requests in parallel, bounded by the engine's
// worker count. Results keep the order of reqs; a failing request never
// affects its siblings.
func (e *Engine) ExecuteAll(ctx context.Context, reqs []Request) []FileResult {
	results := make([]FileResult, len(reqs))

	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i, req := range reqs {
		g.Go(func() error {
			results[i].FilePath = req.FilePath
			if err := ctx.Err(); err != nil {
				results[i].Error = tserrors.BodyOf(tserrors.Wrap(tserrors.KindInternal, "batch", err))
				return nil
			}
			res, err := e.Execute(ctx, req)
			if err != nil {
				results[i].Error = tserrors.BodyOf(err)
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// AnalyzeFiles runs analyze_file on every path.
func (e *Engine) AnalyzeFiles(ctx context.Context, paths []string) []FileResult {
	reqs := make([]Request, len(paths))
	for i, p := range paths {
		reqs[i] = Request{Operation: OpAnalyzeFile, FilePath: p}
	}
	return e.ExecuteAll(ctx, reqs)
}

// CollectFiles lists the supported source files under dir, skipping what
// the filter excludes.
func CollectFiles(dir string, filter *util.Filter) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && filter.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		// Check exclude patterns for files too (e.g., *.min.js)
		if filter.Excluded(path) || !parser.IsSupportedFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, tserrors.Wrap(tserrors.KindIO, "walk", err).WithPath(dir)
	}
	return files, nil
}
