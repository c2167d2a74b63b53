package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// memTempAdapter keeps mutant artifacts in memory.
type memTempAdapter struct {
	mu        sync.Mutex
	files     map[m.Path]string
	removed   []m.Path
	createErr error
	removeErr error
	next      int
}

func newMemTempAdapter() *memTempAdapter {
	return &memTempAdapter{files: make(map[m.Path]string)}
}

func (a *memTempAdapter) CreateTemp(_ context.Context, originalPath m.Path, content []byte) (m.Path, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.createErr != nil {
		return "", a.createErr
	}

	a.next++
	path := m.Path(filepath.Join("/tmp/mutants", strings.Repeat("x", a.next), filepath.Base(string(originalPath))))
	a.files[path] = string(content)

	return path, nil
}

func (a *memTempAdapter) RemoveTemp(_ context.Context, tempPath m.Path) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.removeErr != nil {
		return a.removeErr
	}

	delete(a.files, tempPath)
	a.removed = append(a.removed, tempPath)

	return nil
}

func (a *memTempAdapter) live() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.files)
}

func (a *memTempAdapter) content(path m.Path) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.files[path]
}

// funcRunner is a TestRunnerAdapter backed by a function.
type funcRunner func(ctx context.Context, workDir m.Path, sourceFiles []m.Path) (m.TestOutcome, error)

func (f funcRunner) Run(ctx context.Context, workDir m.Path, sourceFiles []m.Path) (m.TestOutcome, error) {
	return f(ctx, workDir, sourceFiles)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func parseJS(t *testing.T, filename, src string) *adapter.ParsedFile {
	t.Helper()

	parser, err := adapter.NewLocalJSFileAdapter(nil)
	require.NoError(t, err)

	file, err := parser.Parse(context.Background(), filename, []byte(src))
	require.NoError(t, err)
	t.Cleanup(file.Close)

	return file
}

func nodeTypes(nodes *m.NodeSet) []string {
	types := make([]string, 0, nodes.Len())
	for _, node := range nodes.Nodes() {
		types = append(types, node.Type())
	}

	return types
}

func testSource(path string) m.Source {
	return m.Source{Origin: &m.File{ShortPath: m.Path(filepath.Base(path)), FullPath: m.Path(path), Hash: "0123456789abcdef"}}
}
