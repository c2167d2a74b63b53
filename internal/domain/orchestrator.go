package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// Orchestrator coordinates applying a mutation as a persisted mutant,
// placing it in a temporary copy of the project and running the test suite
// there to classify the mutant.
type Orchestrator interface {
	TestMutation(ctx context.Context, mutation m.Mutation, sourceFiles []m.Path) (m.Report, error)
}

type orchestrator struct {
	fsAdapter   adapter.SourceFSAdapter
	tempAdapter adapter.TempFileAdapter
	testAdapter adapter.TestRunnerAdapter
	timeout     time.Duration
}

// NewOrchestrator constructs an Orchestrator backed by the provided
// filesystem, persistence and test runner adapters. A non-positive timeout
// leaves time limits to the test runner.
func NewOrchestrator(
	fsAdapter adapter.SourceFSAdapter,
	tempAdapter adapter.TempFileAdapter,
	testAdapter adapter.TestRunnerAdapter,
	timeout time.Duration,
) Orchestrator {
	return &orchestrator{
		fsAdapter:   fsAdapter,
		tempAdapter: tempAdapter,
		testAdapter: testAdapter,
		timeout:     timeout,
	}
}

func (to *orchestrator) TestMutation(ctx context.Context, mutation m.Mutation, sourceFiles []m.Path) (m.Report, error) {
	if err := to.validateMutation(mutation); err != nil {
		return m.Report{}, err
	}

	if err := ctx.Err(); err != nil {
		return m.Report{}, err
	}

	mutant, err := to.createMutant(ctx, mutation)
	if err != nil {
		return m.Report{}, err
	}

	defer to.cleanup(mutant)

	files, err := mutant.InsertMutatedFile(sourceFiles)
	if err != nil {
		slog.Error("Failed to insert mutated file", "mutation", mutation.ID, "error", err)
		return m.Report{}, err
	}

	projectRoot, tmpDir, err := to.prepareWorkspace(ctx, mutation.Source.Origin.FullPath)
	if tmpDir != "" {
		defer to.cleanupTempDir(tmpDir)
	}

	if err != nil {
		return m.Report{}, err
	}

	tmpSourcePath, err := to.buildTempPath(ctx, projectRoot, tmpDir, mutation.Source.Origin.FullPath)
	if err != nil {
		return m.Report{}, err
	}

	if err := to.writeMutatedFile(ctx, tmpSourcePath, mutant.MutatedCode()); err != nil {
		return m.Report{}, err
	}

	files = to.workspaceFiles(ctx, projectRoot, tmpDir, files, mutant.MutatedFilename(), tmpSourcePath)

	outcome, err := to.runTests(ctx, tmpDir, files)
	if err != nil {
		return m.Report{}, err
	}

	if err := mutant.RecordOutcome(outcome); err != nil {
		return m.Report{}, err
	}

	slog.Debug("Mutant tested", "mutation", mutation.ID, "status", mutant.Status(), "tests", len(mutant.TestsRan()))

	return mutant.Report(), nil
}

func (to *orchestrator) validateMutation(mutation m.Mutation) error {
	if mutation.Source.Origin == nil {
		return fmt.Errorf("source origin is nil")
	}

	if to.fsAdapter == nil || to.tempAdapter == nil || to.testAdapter == nil {
		return fmt.Errorf("missing adapters")
	}

	return nil
}

func (to *orchestrator) createMutant(ctx context.Context, mutation m.Mutation) (*Mutant, error) {
	path := mutation.Source.Origin.FullPath

	content, err := to.fsAdapter.ReadFile(ctx, path)
	if err != nil {
		slog.Error("Failed to read source", "path", path, "error", err)
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mutant, err := NewMutant(ctx, to.tempAdapter, mutation, path, string(content), mutation.Substitute, mutation.Location)
	if err != nil {
		slog.Error("Failed to create mutant", "mutation", mutation.ID, "error", err)
		return nil, fmt.Errorf("mutation %s: %w", mutation.ID, err)
	}

	return mutant, nil
}

// prepareWorkspace copies the project holding sourcePath into a fresh
// temporary directory. A source outside any package.json project is treated
// as its own project rooted at its directory.
func (to *orchestrator) prepareWorkspace(ctx context.Context, sourcePath m.Path) (m.Path, m.Path, error) {
	projectRoot, err := to.fsAdapter.FindProjectRoot(ctx, sourcePath)
	if err != nil {
		slog.Debug("No project root, using the source directory", "sourcePath", sourcePath, "error", err)
		projectRoot = m.Path(filepath.Dir(string(sourcePath)))
	}

	tmpDir, err := to.fsAdapter.CreateTempDir(ctx, "jsgooze-mutation-*")
	if err != nil {
		slog.Error("Failed to create temp dir", "error", err)
		return "", "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	if err := to.fsAdapter.CopyDir(ctx, projectRoot, tmpDir); err != nil {
		slog.Error("Failed to copy project to temp dir", "projectRoot", projectRoot, "tmpDir", tmpDir, "error", err)
		return projectRoot, tmpDir, fmt.Errorf("failed to copy project: %w", err)
	}

	return projectRoot, tmpDir, nil
}

func (to *orchestrator) buildTempPath(ctx context.Context, projectRoot, tmpDir, path m.Path) (m.Path, error) {
	rel, err := to.fsAdapter.RelPath(ctx, projectRoot, path)
	if err != nil {
		slog.Error("Failed to get relative path", "projectRoot", projectRoot, "path", path, "error", err)
		return "", fmt.Errorf("failed to get relative path: %w", err)
	}

	return to.fsAdapter.JoinPath(ctx, string(tmpDir), string(rel)), nil
}

func (to *orchestrator) writeMutatedFile(ctx context.Context, path m.Path, content string) error {
	if err := to.fsAdapter.WriteFile(ctx, path, []byte(content), 0o600); err != nil {
		slog.Error("Failed to write mutated file", "path", path, "error", err)
		return fmt.Errorf("failed to write mutated file: %w", err)
	}

	return nil
}

// workspaceFiles maps the file list into the workspace: the mutant artifact
// becomes the mutated copy and other project files their copies. Files
// outside the project keep their paths.
func (to *orchestrator) workspaceFiles(ctx context.Context, projectRoot, tmpDir m.Path, files []m.Path, artifact, mutated m.Path) []m.Path {
	out := make([]m.Path, len(files))

	for i, file := range files {
		if file == artifact {
			out[i] = mutated
			continue
		}

		rel, err := to.fsAdapter.RelPath(ctx, projectRoot, file)
		if err != nil || rel == ".." || strings.HasPrefix(string(rel), ".."+string(filepath.Separator)) {
			out[i] = file
			continue
		}

		out[i] = to.fsAdapter.JoinPath(ctx, string(tmpDir), string(rel))
	}

	return out
}

// runTests awaits the test verdict. Exceeding the orchestrator's own
// deadline is a TimedOut verdict; cancellation of ctx is an error.
func (to *orchestrator) runTests(ctx context.Context, workDir m.Path, files []m.Path) (m.TestOutcome, error) {
	runCtx := ctx

	if to.timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, to.timeout)
		defer cancel()
	}

	outcome, err := to.testAdapter.Run(runCtx, workDir, files)
	if err == nil {
		return outcome, nil
	}

	if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return m.TimedOutOutcome(), nil
	}

	slog.Error("Failed to run tests", "error", err)

	return m.TestOutcome{}, fmt.Errorf("run tests: %w", err)
}

// cleanup removes the mutant artifact. It runs with its own context so a
// cancelled run still releases the file.
func (to *orchestrator) cleanup(mutant *Mutant) {
	if err := mutant.Remove(context.Background()); err != nil {
		slog.Error("Failed to cleanup mutant", "path", mutant.MutatedFilename(), "error", err)
	}
}

func (to *orchestrator) cleanupTempDir(tmpDir m.Path) {
	if err := to.fsAdapter.RemoveAll(context.Background(), tmpDir); err != nil {
		slog.Error("Failed to cleanup temp dir", "tmpDir", tmpDir, "error", err)
	}
}
