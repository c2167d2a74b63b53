package adapter

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestLocalTestRunnerAdapter_Run(t *testing.T) {
	requireShell(t)

	ctx := context.Background()
	files := []m.Path{"/src/a.js", "/tmp/x/b.js"}

	t.Run("exit zero passes", func(t *testing.T) {
		adapter := NewLocalTestRunnerAdapter(t.TempDir(), []string{"sh", "-c", "echo 'TAP version 13'; echo 'ok 1 - adds'; echo 'ok 2 - subtracts # SKIP'"}, 0)

		outcome, err := adapter.Run(ctx, "", files)
		require.NoError(t, err)
		assert.Equal(t, m.VerdictPassed, outcome.Verdict)
		assert.Equal(t, []string{"adds", "subtracts"}, outcome.Tests)
	})

	t.Run("non-zero exit fails with failing tests", func(t *testing.T) {
		adapter := NewLocalTestRunnerAdapter(t.TempDir(), []string{"sh", "-c", "echo 'ok 1 - adds'; echo 'not ok 2 - subtracts'; exit 1"}, 0)

		outcome, err := adapter.Run(ctx, "", files)
		require.NoError(t, err)
		assert.Equal(t, m.VerdictFailed, outcome.Verdict)
		assert.Equal(t, []string{"subtracts"}, outcome.Failed)
		assert.Equal(t, []string{"adds", "subtracts"}, outcome.Tests)
	})

	t.Run("deadline yields timed out", func(t *testing.T) {
		adapter := NewLocalTestRunnerAdapter(t.TempDir(), []string{"sh", "-c", "sleep 5"}, 50*time.Millisecond)

		outcome, err := adapter.Run(ctx, "", files)
		require.NoError(t, err)
		assert.Equal(t, m.VerdictTimedOut, outcome.Verdict)
	})

	t.Run("cancellation is an error", func(t *testing.T) {
		adapter := NewLocalTestRunnerAdapter(t.TempDir(), []string{"sh", "-c", "sleep 5"}, 0)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := adapter.Run(cancelled, "", files)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("source list is exported and expanded", func(t *testing.T) {
		adapter := NewLocalTestRunnerAdapter(t.TempDir(), []string{
			"sh", "-c", `echo "ok 1 - env $` + SourceFilesEnv + `"; echo "ok 2 - arg $1"`, "sh", SourceFilesPlaceholder,
		}, 0)

		outcome, err := adapter.Run(ctx, "", files)
		require.NoError(t, err)
		assert.Equal(t, []string{"env /src/a.js:/tmp/x/b.js", "arg /src/a.js"}, outcome.Tests)
	})

	t.Run("per run directory overrides the default", func(t *testing.T) {
		workDir := t.TempDir()
		adapter := NewLocalTestRunnerAdapter(t.TempDir(), []string{"sh", "-c", `echo "ok 1 - $(basename "$PWD")"`}, 0)

		outcome, err := adapter.Run(ctx, m.Path(workDir), files)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Base(workDir)}, outcome.Tests)
	})

	t.Run("missing command is an error", func(t *testing.T) {
		adapter := NewLocalTestRunnerAdapter(t.TempDir(), []string{"jsgooze-no-such-binary"}, 0)

		_, err := adapter.Run(ctx, "", files)
		require.Error(t, err)
	})
}

func TestNewLocalTestRunnerAdapter_DefaultCommand(t *testing.T) {
	adapter := NewLocalTestRunnerAdapter("", nil, 0)
	assert.Equal(t, DefaultTestCommand, adapter.command)
}

func TestParseTAP(t *testing.T) {
	output := `TAP version 13
# Subtest: math
    ok 1 - adds
    not ok 2 - divides by zero
      ---
      duration_ms: 0.3
      ...
ok 3 - math
not ok 4
1..4
# pass 2`

	passed, failed := ParseTAP(output)
	assert.Equal(t, []string{"adds", "math"}, passed)
	assert.Equal(t, []string{"divides by zero"}, failed)
}
