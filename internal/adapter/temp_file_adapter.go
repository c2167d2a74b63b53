package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

// TempFileAdapter persists mutated sources as standalone artifacts. Each call
// to CreateTemp yields a distinct path even for the same original file, so
// concurrent callers never share an artifact.
type TempFileAdapter interface {
	// CreateTemp writes content to a fresh temporary file named after
	// originalPath and returns its location.
	CreateTemp(ctx context.Context, originalPath m.Path, content []byte) (m.Path, error)

	// RemoveTemp deletes an artifact created by CreateTemp. Removing an
	// artifact that no longer exists is not an error.
	RemoveTemp(ctx context.Context, tempPath m.Path) error
}

// LocalTempFileAdapter stores artifacts as <root>/<uuid>/<basename>.
type LocalTempFileAdapter struct {
	root string
}

// NewLocalTempFileAdapter constructs a LocalTempFileAdapter rooted at root.
// An empty root selects a directory under os.TempDir.
func NewLocalTempFileAdapter(root string) *LocalTempFileAdapter {
	if root == "" {
		root = filepath.Join(os.TempDir(), "jsgooze")
	}

	return &LocalTempFileAdapter{root: root}
}

// Root returns the directory under which artifacts are created.
func (a *LocalTempFileAdapter) Root() string {
	return a.root
}

// CreateTemp writes content to <root>/<uuid>/<basename of originalPath>.
func (a *LocalTempFileAdapter) CreateTemp(ctx context.Context, originalPath m.Path, content []byte) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(a.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("Failed to create temp dir", "dir", dir, "error", err)
		return "", fmt.Errorf("%w: create %s: %w", m.ErrPersistence, dir, err)
	}

	target := filepath.Join(dir, filepath.Base(string(originalPath)))
	if err := os.WriteFile(target, content, 0o600); err != nil {
		slog.Error("Failed to write temp file", "path", target, "error", err)
		_ = os.RemoveAll(dir)

		return "", fmt.Errorf("%w: write %s: %w", m.ErrPersistence, target, err)
	}

	slog.Debug("Created mutated artifact", "original", originalPath, "path", target)

	return m.Path(target), nil
}

// RemoveTemp deletes the artifact and the directory created for it.
func (a *LocalTempFileAdapter) RemoveTemp(_ context.Context, tempPath m.Path) error {
	if tempPath == "" {
		return nil
	}

	dir := filepath.Dir(string(tempPath))
	if filepath.Dir(dir) != filepath.Clean(a.root) {
		// Not one of ours: only remove the file itself.
		if err := os.Remove(string(tempPath)); err != nil && !os.IsNotExist(err) {
			slog.Error("Failed to remove temp file", "path", tempPath, "error", err)
			return fmt.Errorf("%w: remove %s: %w", m.ErrPersistence, tempPath, err)
		}

		return nil
	}

	if err := os.RemoveAll(dir); err != nil {
		slog.Error("Failed to remove temp dir", "dir", dir, "error", err)
		return fmt.Errorf("%w: remove %s: %w", m.ErrPersistence, dir, err)
	}

	slog.Debug("Removed mutated artifact", "path", tempPath)

	return nil
}
