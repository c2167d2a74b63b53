// Package controller provides output adapters for displaying mutation testing results.
package controller

import (
	"context"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeEstimate StartMode = iota
	ModeTest
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithEstimateMode sets the UI to estimation mode.
func WithEstimateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeEstimate
	}
}

// WithTestMode sets the UI to test execution mode.
func WithTestMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeTest
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	cfg := StartConfig{mode: ModeTest}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI displays the progress and results of a workflow.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayEstimation(ctx context.Context, mutations []m.Mutation, err error) error
	DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int)
	DisplayUpcomingTestsInfo(ctx context.Context, count int)
	DisplayStartingTestInfo(ctx context.Context, currentMutation m.Mutation, threadID int)
	DisplayCompletedTestInfo(ctx context.Context, currentMutation m.Mutation, report m.Report)
	DisplayReports(ctx context.Context, reports []m.FileReport) error
}

// NewUI returns the interactive TUI when tty is set and the plain text UI
// otherwise. Both write to the command's output.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// EstimateRow is the number of mutations per operator for one file.
type EstimateRow struct {
	Path   string
	Counts map[m.MutationType]int
	Total  int
}

// Estimate groups mutations by source file, sorted by path.
func Estimate(mutations []m.Mutation) []EstimateRow {
	byPath := make(map[string]*EstimateRow)

	for _, mutation := range mutations {
		if mutation.Source.Origin == nil {
			continue
		}

		path := string(mutation.Source.Origin.ShortPath)
		if path == "" {
			path = string(mutation.Source.Origin.FullPath)
		}

		row, ok := byPath[path]
		if !ok {
			row = &EstimateRow{Path: path, Counts: make(map[m.MutationType]int)}
			byPath[path] = row
		}

		row.Counts[mutation.Type]++
		row.Total++
	}

	rows := make([]EstimateRow, 0, len(byPath))
	for _, row := range byPath {
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })

	return rows
}

// FileSummary counts mutant statuses for one source file.
type FileSummary struct {
	Path     string
	Total    int
	Killed   int
	Survived int
	TimedOut int
	Untested int
	Errors   int
}

func (s *FileSummary) add(report m.Report) {
	s.Total++

	if report.Error != "" {
		s.Errors++
	}

	switch report.Status {
	case m.Killed:
		s.Killed++
	case m.Survived:
		s.Survived++
	case m.TimedOut:
		s.TimedOut++
	default:
		s.Untested++
	}
}

// Summarize counts statuses per file report and over all of them.
func Summarize(reports []m.FileReport) ([]FileSummary, FileSummary) {
	files := make([]FileSummary, 0, len(reports))
	total := FileSummary{Path: "Total"}

	for _, fr := range reports {
		summary := FileSummary{Path: string(fr.Source)}
		for _, report := range fr.Reports {
			summary.add(report)
			total.add(report)
		}

		files = append(files, summary)
	}

	return files, total
}
