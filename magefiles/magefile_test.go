//go:build mage

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n\n  \t\nfunc f() {}\n"), 0o644))

	n, err := countLines(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = countLines(filepath.Join(t.TempDir(), "missing.go"))
	assert.Error(t, err)
}

func TestSkipDir(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{".", false},
		{"internal", false},
		{"_examples", true},
		{".git", true},
		{"testdata", true},
		{"bin", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := skipDir(tt.path, filepath.Base(tt.path))
			if tt.skip {
				assert.Equal(t, filepath.SkipDir, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
