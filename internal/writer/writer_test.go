package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nick227/ssot-codegen/internal/plugin"
)

func TestWriteAllCreatesNestedFiles(t *testing.T) {
	root := t.TempDir()
	agg := &plugin.Aggregate{
		Files: []plugin.FileEntry{
			{Path: "gen/dto/user.go", Content: "package dto\n", Owner: "core"},
			{Path: "gen/auth/middleware.go", Content: "package auth\n", Owner: "auth"},
			{Path: "Dockerfile", Content: "FROM golang:1.23\n", Owner: "docker"},
		},
	}

	w := New(root, 4, nil)
	require.NoError(t, w.WriteAll(context.Background(), agg))

	for _, f := range agg.Files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
		require.NoError(t, err)
		assert.Equal(t, f.Content, string(data))
	}
}

func TestWriteAllManyFilesBoundedConcurrency(t *testing.T) {
	root := t.TempDir()
	agg := &plugin.Aggregate{}
	for i := 0; i < 200; i++ {
		agg.Files = append(agg.Files, plugin.FileEntry{
			Path:    fmt.Sprintf("gen/pkg%d/file.go", i),
			Content: fmt.Sprintf("package pkg%d\n", i),
			Owner:   "core",
		})
	}

	w := New(root, 8, nil)
	require.NoError(t, w.WriteAll(context.Background(), agg))

	entries, err := os.ReadDir(filepath.Join(root, "gen"))
	require.NoError(t, err)
	assert.Len(t, entries, 200)
}

func TestWriteAllRejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()
	agg := &plugin.Aggregate{
		Files: []plugin.FileEntry{
			{Path: "../outside.go", Content: "nope", Owner: "evil"},
		},
	}

	err := New(root, 1, nil).WriteAll(context.Background(), agg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the output directory")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(root), "outside.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteAllRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := &plugin.Aggregate{
		Files: []plugin.FileEntry{{Path: "a.go", Content: "x", Owner: "core"}},
	}
	err := New(t.TempDir(), 1, nil).WriteAll(ctx, agg)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "manifest.json")
	require.NoError(t, WriteManifest(path, []byte("{}\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}
