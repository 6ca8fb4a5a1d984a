package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		filename string
		want     bool
	}{
		{
			name:     "exact match",
			pattern:  "node_modules",
			filename: "node_modules",
			want:     true,
		},
		{
			name:     "wildcard match",
			pattern:  "*.min.js",
			filename: "app.min.js",
			want:     true,
		},
		{
			name:     "wildcard no match",
			pattern:  "*.min.js",
			filename: "app.js",
			want:     false,
		},
		{
			name:     "question mark",
			pattern:  "test?.go",
			filename: "test1.go",
			want:     true,
		},
		{
			name:     "question mark no match",
			pattern:  "test?.go",
			filename: "test12.go",
			want:     false,
		},
		{
			name:     "character class",
			pattern:  "test[123].go",
			filename: "test2.go",
			want:     true,
		},
		{
			name:     "negated character class",
			pattern:  "test[!123].go",
			filename: "test4.go",
			want:     true,
		},
		{
			name:     "dot files",
			pattern:  ".git",
			filename: ".git",
			want:     true,
		},
		{
			name:     "double star matches zero directories",
			pattern:  "**/*.go",
			filename: "test.go",
			want:     true,
		},
		{
			name:     "double star across directories",
			pattern:  "**/testdata/**",
			filename: "pkg/a/testdata/x.go",
			want:     true,
		},
		{
			name:     "directory name match",
			pattern:  "build",
			filename: "build",
			want:     true,
		},
		{
			name:     "empty pattern",
			pattern:  "",
			filename: "test",
			want:     false,
		},
		{
			name:     "empty filename",
			pattern:  "*.go",
			filename: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchPattern(tt.pattern, tt.filename)
			if got != tt.want {
				t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.filename, got, tt.want)
			}
		})
	}
}

func TestMatchPatternInvalid(t *testing.T) {
	// Test that invalid patterns are handled gracefully (return false, log warning)
	// These should not panic, just return false
	invalidPatterns := []string{
		"[",    // unclosed bracket
		"[*",   // invalid bracket pattern
		"???",  // valid but tests edge case
		"[a-]", // invalid range
	}

	for _, pattern := range invalidPatterns {
		t.Run(pattern, func(t *testing.T) {
			// Should not panic and should return false
			got := MatchPattern(pattern, "test")
			if got {
				t.Errorf("MatchPattern(%q, %q) = %v, want false (invalid pattern)", pattern, "test", got)
			}
		})
	}
}

func TestMatchPatternCommonExclusions(t *testing.T) {
	// Test patterns commonly used in code exclusion
	tests := []struct {
		pattern  string
		filename string
		want     bool
	}{
		{".git", ".git", true},
		{"node_modules", "node_modules", true},
		{"vendor", "vendor", true},
		{"__pycache__", "__pycache__", true},
		{".venv", ".venv", true},
		{"*.min.js", "bundle.min.js", true},
		{"*.min.js", "bundle.js", false},
		{"*.map", "bundle.map", true},
		{".idea", ".idea", true},
		{".vscode", ".vscode", true},
		{"target", "target", true},
		{"build", "build", true},
		{"dist", "dist", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.filename, func(t *testing.T) {
			got := MatchPattern(tt.pattern, tt.filename)
			if got != tt.want {
				t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.filename, got, tt.want)
			}
		})
	}
}

func TestShouldExclude(t *testing.T) {
	patterns := []string{"node_modules", "*.min.js", "**/testdata/**"}

	assert.True(t, ShouldExclude("web/node_modules/lib/a.js", "a.js", patterns))
	assert.True(t, ShouldExclude("web/app.min.js", "app.min.js", patterns))
	assert.True(t, ShouldExclude("pkg/testdata/x.go", "x.go", patterns))
	assert.False(t, ShouldExclude("pkg/main.go", "main.go", patterns))
}

func TestFilterGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n*.gen.go\n"), 0o644))

	f := NewFilter(root, []string{"vendor"}, true)
	assert.True(t, f.Excluded(filepath.Join(root, "vendor", "x.go")))
	assert.True(t, f.Excluded(filepath.Join(root, "api.gen.go")))
	assert.True(t, f.Excluded(filepath.Join(root, "build", "out.c")))
	assert.False(t, f.Excluded(filepath.Join(root, "main.go")))
	assert.False(t, f.Excluded(root))

	plain := NewFilter(root, nil, false)
	assert.False(t, plain.Excluded(filepath.Join(root, "api.gen.go")))

	var none *Filter
	assert.False(t, none.Excluded("anything"))
}
