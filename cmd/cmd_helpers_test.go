package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	domainmocks "gooze.dev/pkg/jsgooze/internal/domain/mocks"
)

// newTestRoot builds a fresh root command with sub attached and a mock
// workflow installed for the duration of the test.
func newTestRoot(t *testing.T, sub *cobra.Command) (*cobra.Command, *domainmocks.MockWorkflow, *bytes.Buffer) {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow

	t.Cleanup(func() { workflow = originalWorkflow })

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.AddCommand(sub)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	return cmd, mockWorkflow, out
}

// execute runs cmd with args, logging into the test's temp dir.
func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()

	cmd.SetArgs(append(args, "--"+logFileFlagName, filepath.Join(t.TempDir(), "jsgooze.log")))

	return cmd.Execute()
}
