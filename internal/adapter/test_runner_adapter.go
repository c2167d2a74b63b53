package adapter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

// SourceFilesEnv is the environment variable through which the source list
// under test is exported to the test command.
const SourceFilesEnv = "JSGOOZE_SOURCE_FILES"

// SourceFilesPlaceholder, when present as a command argument, is expanded to
// the source list under test.
const SourceFilesPlaceholder = "{files}"

// waitDelay bounds how long a killed run may keep its output pipes open
// through orphaned child processes.
const waitDelay = 2 * time.Second

// DefaultTestCommand runs the Node.js built-in test runner with TAP output.
var DefaultTestCommand = []string{"node", "--test", "--test-reporter=tap"}

// TestRunnerAdapter runs a project's test suite against a list of source
// files and classifies the result.
type TestRunnerAdapter interface {
	// Run executes the tests inside workDir, or the adapter's default
	// directory when workDir is empty. A run that exceeds its time budget
	// yields a TimedOut verdict rather than an error; errors are reserved for
	// runs that could not be started or were cancelled.
	Run(ctx context.Context, workDir m.Path, sourceFiles []m.Path) (m.TestOutcome, error)
}

// LocalTestRunnerAdapter runs a configured command with os/exec.
type LocalTestRunnerAdapter struct {
	workDir string
	command []string
	timeout time.Duration
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter. An empty
// command selects DefaultTestCommand, a non-positive timeout disables the
// adapter's own deadline.
func NewLocalTestRunnerAdapter(workDir string, command []string, timeout time.Duration) *LocalTestRunnerAdapter {
	if len(command) == 0 {
		command = DefaultTestCommand
	}

	return &LocalTestRunnerAdapter{
		workDir: workDir,
		command: command,
		timeout: timeout,
	}
}

// Run executes the test command in workDir, falling back to the configured
// working directory.
func (a *LocalTestRunnerAdapter) Run(ctx context.Context, workDir m.Path, sourceFiles []m.Path) (m.TestOutcome, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	args := expandArgs(a.command[1:], sourceFiles)

	// #nosec G204 - the command comes from the user's own configuration
	cmd := exec.CommandContext(ctx, a.command[0], args...)
	cmd.Dir = a.workDir
	if workDir != "" {
		cmd.Dir = string(workDir)
	}
	cmd.Env = append(os.Environ(), SourceFilesEnv+"="+joinPaths(sourceFiles))
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	output := stdout.String() + stderr.String()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		slog.Debug("Test run timed out", "command", a.command, "timeout", a.timeout)

		outcome := m.TimedOutOutcome()
		outcome.Output = output

		return outcome, nil
	}

	if err := ctx.Err(); err != nil {
		return m.TestOutcome{}, err
	}

	passed, failed := ParseTAP(stdout.String())

	if runErr == nil {
		outcome := m.Passed(passed...)
		outcome.Output = output

		return outcome, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		slog.Error("Failed to run test command", "command", a.command, "error", runErr)
		return m.TestOutcome{}, fmt.Errorf("run %s: %w", a.command[0], runErr)
	}

	return m.TestOutcome{
		Verdict: m.VerdictFailed,
		Tests:   append(passed, failed...),
		Failed:  failed,
		Output:  output,
	}, nil
}

func expandArgs(args []string, sourceFiles []m.Path) []string {
	out := make([]string, 0, len(args)+len(sourceFiles))

	for _, arg := range args {
		if arg != SourceFilesPlaceholder {
			out = append(out, arg)
			continue
		}

		for _, file := range sourceFiles {
			out = append(out, string(file))
		}
	}

	return out
}

func joinPaths(paths []m.Path) string {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, string(p))
	}

	return strings.Join(parts, string(os.PathListSeparator))
}

var tapLine = regexp.MustCompile(`^\s*(not )?ok \d+(?: - )?([^#]*)`)

// ParseTAP extracts passing and failing test names from TAP output.
func ParseTAP(output string) (passed, failed []string) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		match := tapLine.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}

		name := strings.TrimSpace(match[2])
		if name == "" {
			continue
		}

		if match[1] != "" {
			failed = append(failed, name)
		} else {
			passed = append(passed, name)
		}
	}

	return passed, failed
}
