package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	mu       sync.Mutex
	cmd      *cobra.Command
	added    *color.Color
	removed  *color.Color
	survived *color.Color
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{
		cmd:      cmd,
		added:    color.New(color.FgGreen),
		removed:  color.New(color.FgRed),
		survived: color.New(color.FgYellow, color.Bold),
	}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(context.Context) {}

// Wait returns immediately; SimpleUI never blocks.
func (s *SimpleUI) Wait(context.Context) {}

// DisplayEstimation prints the estimation results or error.
func (s *SimpleUI) DisplayEstimation(ctx context.Context, mutations []m.Mutation, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("estimation error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderEstimationTable(Estimate(mutations), len(mutations)))

	return nil
}

func renderEstimationTable(rows []EstimateRow, totalMutations int) string {
	var buf bytes.Buffer

	header := []string{"Path"}
	for _, mt := range m.AllMutationTypes {
		header = append(header, string(mt))
	}

	header = append(header, "Mutations")

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)

	for _, row := range rows {
		line := []string{row.Path}
		for _, mt := range m.AllMutationTypes {
			line = append(line, strconv.Itoa(row.Counts[mt]))
		}

		table.Append(append(line, strconv.Itoa(row.Total)))
	}

	footer := make([]string, len(header))
	footer[0] = fmt.Sprintf("Total Files %d", len(rows))
	footer[len(footer)-1] = strconv.Itoa(totalMutations)
	table.SetFooter(footer)

	table.Render()

	return buf.String()
}

// DisplayConcurrencyInfo shows concurrency settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int) {
	if ctx.Err() != nil {
		return
	}

	if shardCount <= 1 {
		s.printf("Running with %d worker(s)\n", threads)
		return
	}

	s.printf("Running with %d worker(s) (shard %d/%d)\n", threads, shardIndex, shardCount)
}

// DisplayUpcomingTestsInfo shows the number of mutations about to be tested.
func (s *SimpleUI) DisplayUpcomingTestsInfo(ctx context.Context, count int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Upcoming mutations: %d\n", count)
}

// DisplayStartingTestInfo shows info about the mutation test starting.
func (s *SimpleUI) DisplayStartingTestInfo(ctx context.Context, currentMutation m.Mutation, threadID int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("[%d] %s %s %s\n", threadID, currentMutation.ID, currentMutation.Type, mutationPath(currentMutation))
}

// DisplayCompletedTestInfo shows the status of a tested mutant. Surviving
// mutants also print their diff.
func (s *SimpleUI) DisplayCompletedTestInfo(ctx context.Context, currentMutation m.Mutation, report m.Report) {
	if ctx.Err() != nil {
		return
	}

	if report.Error != "" {
		s.printf("%s -> %s (%s)\n", currentMutation.ID, report.Status, report.Error)
		return
	}

	s.printf("%s -> %s\n", currentMutation.ID, report.Status)

	if report.Status == m.Survived && report.Diff != "" {
		s.printf("%s\n", s.colorDiff(report.Diff))
	}
}

// DisplayReports prints per-file status counts followed by the surviving
// mutants.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.FileReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	files, total := Summarize(reports)
	s.printf("\n%s", renderReportsTable(files, total))

	for _, fr := range reports {
		for _, report := range fr.Reports {
			if report.Status != m.Survived {
				continue
			}

			s.printf("%s %s:%d %s\n",
				s.survived.Sprint("survived"), fr.Source, report.Location.StartLine, report.MutantID)
			s.printf("  - %s\n  + %s\n", s.removed.Sprint(report.OriginalLine), s.added.Sprint(report.MutatedLine))
		}
	}

	return nil
}

func renderReportsTable(files []FileSummary, total FileSummary) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Mutants", "Killed", "Survived", "Timed Out", "Untested"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	for _, f := range files {
		table.Append(summaryRow(f))
	}

	table.SetFooter(summaryRow(total))
	table.Render()

	return buf.String()
}

func summaryRow(f FileSummary) []string {
	return []string{
		f.Path,
		strconv.Itoa(f.Total),
		strconv.Itoa(f.Killed),
		strconv.Itoa(f.Survived),
		strconv.Itoa(f.TimedOut),
		strconv.Itoa(f.Untested),
	}
}

func (s *SimpleUI) colorDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			lines[i] = s.added.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.removed.Sprint(line)
		}
	}

	return strings.Join(lines, "\n")
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func mutationPath(mutation m.Mutation) string {
	if mutation.Source.Origin == nil {
		return ""
	}

	if mutation.Source.Origin.ShortPath != "" {
		return string(mutation.Source.Origin.ShortPath)
	}

	return string(mutation.Source.Origin.FullPath)
}
