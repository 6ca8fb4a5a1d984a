package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/heefoo/treesitter-mcp/internal/analyzer"
	"github.com/heefoo/treesitter-mcp/internal/graph"
	"github.com/heefoo/treesitter-mcp/internal/parser"
	"github.com/heefoo/treesitter-mcp/internal/util"
)

// Publisher receives the call graph of every re-analyzed file. Empty
// slices mean the file is gone. *graph.Storage implements it.
type Publisher interface {
	ReplaceFile(ctx context.Context, filePath string, nodes []*graph.CodeNode, edges []*graph.CodeEdge) error
}

type Watcher struct {
	watcher          *fsnotify.Watcher
	engine           *analyzer.Engine
	publisher        Publisher
	excludePatterns  []string
	respectGitignore bool
	debounceMs       atomic.Int64
	indexTimeoutMs   atomic.Int64
	mu               sync.Mutex
	filters          map[string]*util.Filter
	pendingFiles     map[string]time.Time
	stopCh           chan struct{}
	stopOnce         sync.Once
}

type WatcherConfig struct {
	Engine           *analyzer.Engine
	Publisher        Publisher
	ExcludePatterns  []string
	RespectGitignore bool
	DebounceMs       int
	IndexTimeoutMs   int
}

const deleteSuffix = "|DELETE"

func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounceMs := cfg.DebounceMs
	if debounceMs == 0 {
		debounceMs = 100 // Default 100ms debounce
	}

	indexTimeoutMs := cfg.IndexTimeoutMs
	if indexTimeoutMs == 0 {
		indexTimeoutMs = 60000
	}

	engine := cfg.Engine
	if engine == nil {
		engine = analyzer.NewEngine()
	}

	w := &Watcher{
		watcher:          fsWatcher,
		engine:           engine,
		publisher:        cfg.Publisher,
		excludePatterns:  cfg.ExcludePatterns,
		respectGitignore: cfg.RespectGitignore,
		filters:          make(map[string]*util.Filter),
		pendingFiles:     make(map[string]time.Time),
		stopCh:           make(chan struct{}),
	}
	w.debounceMs.Store(int64(debounceMs))
	w.indexTimeoutMs.Store(int64(indexTimeoutMs))
	return w, nil
}

// Watch blocks until ctx is done or Stop is called, re-analyzing changed
// files under dirs.
func (w *Watcher) Watch(ctx context.Context, dirs []string) error {
	// Add directories to watch
	for _, dir := range dirs {
		abs, err := w.addRoot(dir)
		if err != nil {
			log.Printf("Warning: failed to resolve %s: %v", dir, err)
			continue
		}
		if err := w.addDirRecursive(abs); err != nil {
			log.Printf("Warning: failed to watch %s: %v", dir, err)
		}
	}

	// Start debounce processor
	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processDebounced(ctx, done)
	}()
	defer wg.Wait()
	defer close(done)

	// Start event loop
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

// IndexAll publishes the call graph of every supported file under dirs.
// Files whose language has no call graph are skipped silently.
func (w *Watcher) IndexAll(ctx context.Context, dirs []string) error {
	var reqs []analyzer.Request
	for _, dir := range dirs {
		abs, err := w.addRoot(dir)
		if err != nil {
			return err
		}
		files, err := analyzer.CollectFiles(abs, w.filterFor(abs))
		if err != nil {
			return err
		}
		for _, f := range files {
			reqs = append(reqs, analyzer.Request{Operation: analyzer.OpGetCallGraph, FilePath: f})
		}
	}

	indexed := 0
	for _, res := range w.engine.ExecuteAll(ctx, reqs) {
		if res.Error != nil {
			continue
		}
		if err := w.publish(ctx, res.FilePath, res.Result.(analyzer.CallGraph)); err != nil {
			log.Printf("Failed to index %s: %v", res.FilePath, err)
			continue
		}
		indexed++
	}
	log.Printf("Indexed %d of %d files", indexed, len(reqs))
	return nil
}

func (w *Watcher) addDirRecursive(dir string) error {
	filter := w.filterFor(dir)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Check exclude patterns
			if path != dir && filter.Excluded(path) {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

// addRoot registers dir as a watched root with its own exclude filter.
func (w *Watcher) addRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.filters[abs]; !ok {
		w.filters[abs] = util.NewFilter(abs, w.excludePatterns, w.respectGitignore)
	}
	return abs, nil
}

// filterFor returns the filter of the deepest watched root containing path.
func (w *Watcher) filterFor(path string) *util.Filter {
	w.mu.Lock()
	defer w.mu.Unlock()

	var best string
	for root := range w.filters {
		if (path == root || strings.HasPrefix(path, root+string(filepath.Separator))) && len(root) > len(best) {
			best = root
		}
	}
	if best == "" {
		return nil
	}
	return w.filters[best]
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Skip excluded paths
	if w.filterFor(event.Name).Excluded(event.Name) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirRecursive(event.Name); err != nil {
				log.Printf("Warning: failed to watch %s: %v", event.Name, err)
			}
			return
		}
	}

	// Skip non-code files
	if !parser.IsSupportedFile(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write,
		event.Op&fsnotify.Create == fsnotify.Create:
		w.queueFile(event.Name)

	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		w.queueFile(event.Name + deleteSuffix)
	}
}

func (w *Watcher) queueFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingFiles[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(w.debounceMs.Load()) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-done:
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	debounceThreshold := time.Duration(w.debounceMs.Load()) * time.Millisecond

	var toProcess []string
	for path, queuedAt := range w.pendingFiles {
		if now.Sub(queuedAt) >= debounceThreshold {
			toProcess = append(toProcess, path)
			delete(w.pendingFiles, path)
		}
	}
	w.mu.Unlock()

	for _, path := range toProcess {
		if strings.HasSuffix(path, deleteSuffix) {
			w.handleDelete(ctx, strings.TrimSuffix(path, deleteSuffix))
			continue
		}
		if err := w.indexFile(ctx, path); err != nil {
			log.Printf("Failed to index %s: %v", path, err)
		} else {
			log.Printf("Indexed: %s", path)
		}
	}
}

func (w *Watcher) indexFile(ctx context.Context, path string) error {
	// Check for context cancellation before starting work
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	indexCtx, cancel := context.WithTimeout(ctx, time.Duration(w.indexTimeoutMs.Load())*time.Millisecond)
	defer cancel()

	if cache := w.engine.Cache(); cache != nil {
		cache.Invalidate(path)
	}
	result, err := w.engine.Execute(indexCtx, analyzer.Request{
		Operation: analyzer.OpGetCallGraph,
		FilePath:  path,
	})
	if err != nil {
		return err
	}
	return w.publish(indexCtx, path, result.(analyzer.CallGraph))
}

func (w *Watcher) publish(ctx context.Context, path string, g analyzer.CallGraph) error {
	if w.publisher == nil {
		return nil
	}
	lang, err := parser.DetectLanguage(path)
	if err != nil {
		return err
	}
	nodes, edges := graph.FromCallGraph(path, string(lang), g)
	if err := w.publisher.ReplaceFile(ctx, path, nodes, edges); err != nil {
		return fmt.Errorf("publish failed for %s: %w", path, err)
	}
	return nil
}

func (w *Watcher) handleDelete(ctx context.Context, path string) {
	indexCtx, cancel := context.WithTimeout(ctx, time.Duration(w.indexTimeoutMs.Load())*time.Millisecond)
	defer cancel()

	if path == "" {
		log.Printf("Warning: skipping delete with empty path")
		return
	}

	if cache := w.engine.Cache(); cache != nil {
		cache.Invalidate(path)
	}

	// Only attempt to delete if storage is configured
	if w.publisher != nil {
		if err := w.publisher.ReplaceFile(indexCtx, path, []*graph.CodeNode{}, []*graph.CodeEdge{}); err != nil {
			log.Printf("Warning: failed to delete file %s: %v", path, err)
		} else {
			log.Printf("Deleted: %s", path)
		}
	}
}
