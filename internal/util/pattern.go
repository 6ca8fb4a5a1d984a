package util

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// MatchPattern wraps doublestar.Match with proper error logging.
// Returns true if pattern matches name, false otherwise.
// Logs malformed patterns to help users fix their exclude lists.
//
// This is a shared utility used by both the batch analyzer and watcher
// components to consistently handle file exclusion patterns.
func MatchPattern(pattern, name string) bool {
	if !doublestar.ValidatePattern(pattern) {
		log.Printf("Warning: invalid pattern '%s'. Pattern will not match any files.", pattern)
		return false
	}
	matched, err := doublestar.Match(pattern, name)
	if err != nil {
		log.Printf("Warning: invalid pattern '%s': %v. Pattern will not match any files.", pattern, err)
		return false
	}
	return matched
}

// ShouldExclude checks if a path should be excluded based on patterns.
// Matches against the base name, every path component and the whole
// slash separated path, so "node_modules" and "**/testdata/**" both work.
func ShouldExclude(path string, name string, excludePatterns []string) bool {
	slashed := filepath.ToSlash(path)
	pathParts := strings.Split(slashed, "/")
	for _, pattern := range excludePatterns {
		if MatchPattern(pattern, name) {
			return true
		}
		if strings.Contains(pattern, "/") {
			if MatchPattern(pattern, slashed) {
				return true
			}
			continue
		}
		for _, part := range pathParts {
			if MatchPattern(pattern, part) {
				return true
			}
		}
	}
	return false
}

// Filter decides which paths under a root are skipped: exclude globs plus,
// optionally, the root's .gitignore.
type Filter struct {
	root     string
	patterns []string
	ignore   *ignore.GitIgnore
}

func NewFilter(root string, patterns []string, respectGitignore bool) *Filter {
	f := &Filter{root: root, patterns: patterns}
	if respectGitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		if err == nil {
			f.ignore = gi
		}
	}
	return f
}

// Excluded reports whether path should be skipped.
func (f *Filter) Excluded(path string) bool {
	if f == nil {
		return false
	}
	rel := path
	if r, err := filepath.Rel(f.root, path); err == nil && !strings.HasPrefix(r, "..") {
		rel = r
	}
	if rel != "." && ShouldExclude(rel, filepath.Base(path), f.patterns) {
		return true
	}
	if f.ignore != nil && rel != "." && f.ignore.MatchesPath(filepath.ToSlash(rel)) {
		return true
	}
	return false
}
