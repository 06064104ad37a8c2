// Package writer persists merged generation output to disk. Writing is
// the one embarrassingly parallel step of a run: one task per unique
// file path, no shared mutable state, bounded concurrency so very
// large schemas do not exhaust file handles.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nick227/ssot-codegen/internal/plugin"
)

// Writer writes aggregate files under a root directory.
type Writer struct {
	root        string
	concurrency int
	logger      *zap.Logger
}

// New creates a writer. Concurrency below 1 is raised to 1.
func New(root string, concurrency int, logger *zap.Logger) *Writer {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{root: root, concurrency: concurrency, logger: logger}
}

// WriteAll writes every file in the aggregate, creating directories as
// needed. Paths are cleaned and confined to the root; an entry trying
// to escape it is rejected.
func (w *Writer) WriteAll(ctx context.Context, agg *plugin.Aggregate) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, f := range agg.Files {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return w.writeFile(f)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to write generated files: %w", err)
	}

	w.logger.Info("wrote generated files",
		zap.Int("count", len(agg.Files)),
		zap.String("dir", w.root))
	return nil
}

func (w *Writer) writeFile(f plugin.FileEntry) error {
	rel := filepath.Clean(filepath.FromSlash(f.Path))
	if rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return fmt.Errorf("file path %q escapes the output directory", f.Path)
	}

	dst := filepath.Join(w.root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
	}
	if err := os.WriteFile(dst, []byte(f.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return nil
}

// WriteManifest writes the encoded manifest to its configured path.
func WriteManifest(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
