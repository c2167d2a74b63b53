package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	killedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	timedOutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// reservedLines is the space kept for the header, summary and footer.
const reservedLines = 10

// TUI implements UI with a Bubble Tea program that renders progress while
// mutants are tested and a scrollable result view afterwards.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

type (
	estimationMsg struct {
		rows  []EstimateRow
		total int
		err   error
	}
	concurrencyMsg struct {
		threads, shardIndex, shardCount int
	}
	upcomingMsg struct{ count int }
	startedMsg  struct {
		threadID int
		id       string
	}
	completedMsg struct{ report m.Report }
	reportsMsg   struct{ reports []m.FileReport }
)

// Start launches the program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return errors.New("tui already started")
	}

	cfg := newStartConfig(options...)
	t.program = tea.NewProgram(newTUIModel(cfg.mode), tea.WithOutput(t.output), tea.WithContext(ctx))
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			slog.Error("TUI stopped", "error", err)
		}
	}(t.program, t.done)

	return nil
}

// Close stops the program and waits for the terminal to be restored.
func (t *TUI) Close(ctx context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(finishedMsg{})

	select {
	case <-done:
	case <-ctx.Done():
	}
}

type finishedMsg struct{}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// DisplayEstimation shows mutation counts per file.
func (t *TUI) DisplayEstimation(ctx context.Context, mutations []m.Mutation, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	t.send(estimationMsg{rows: Estimate(mutations), total: len(mutations), err: err})

	return err
}

// DisplayConcurrencyInfo shows concurrency settings.
func (t *TUI) DisplayConcurrencyInfo(_ context.Context, threads int, shardIndex int, shardCount int) {
	t.send(concurrencyMsg{threads: threads, shardIndex: shardIndex, shardCount: shardCount})
}

// DisplayUpcomingTestsInfo sets the size of the progress bar.
func (t *TUI) DisplayUpcomingTestsInfo(_ context.Context, count int) {
	t.send(upcomingMsg{count: count})
}

// DisplayStartingTestInfo marks a worker busy with a mutation.
func (t *TUI) DisplayStartingTestInfo(_ context.Context, currentMutation m.Mutation, threadID int) {
	t.send(startedMsg{threadID: threadID, id: currentMutation.ID})
}

// DisplayCompletedTestInfo advances the progress bar.
func (t *TUI) DisplayCompletedTestInfo(_ context.Context, _ m.Mutation, report m.Report) {
	t.send(completedMsg{report: report})
}

// DisplayReports switches to the result view.
func (t *TUI) DisplayReports(ctx context.Context, reports []m.FileReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.send(reportsMsg{reports: reports})

	return nil
}

type tuiModel struct {
	mode     StartMode
	spinner  spinner.Model
	progress progress.Model

	threads    int
	shardIndex int
	shardCount int
	upcoming   int
	completed  int
	running    map[int]string
	counts     map[m.MutantStatus]int

	estimate      []EstimateRow
	estimateTotal int
	files         []FileSummary
	summary       FileSummary
	survivors     []string
	hasResults    bool
	err           error

	finished bool
	offset   int
	height   int
	width    int
}

func newTUIModel(mode StartMode) tuiModel {
	return tuiModel{
		mode:     mode,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		running:  make(map[int]string),
		counts:   make(map[m.MutantStatus]int),
	}
}

func (tm tuiModel) Init() tea.Cmd {
	return tm.spinner.Tick
}

func (tm tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tm.height = msg.Height
		tm.width = msg.Width

		return tm, nil
	case tea.KeyMsg:
		return tm.handleKeyPress(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd

		tm.spinner, cmd = tm.spinner.Update(msg)

		return tm, cmd
	case estimationMsg:
		tm.estimate, tm.estimateTotal, tm.err = msg.rows, msg.total, msg.err
	case concurrencyMsg:
		tm.threads, tm.shardIndex, tm.shardCount = msg.threads, msg.shardIndex, msg.shardCount
	case upcomingMsg:
		tm.upcoming = msg.count
	case startedMsg:
		tm.running[msg.threadID] = msg.id
	case completedMsg:
		tm.completed++
		tm.counts[msg.report.Status]++

		for id, running := range tm.running {
			if running == msg.report.MutantID {
				delete(tm.running, id)
			}
		}
	case reportsMsg:
		tm.files, tm.summary = Summarize(msg.reports)
		tm.survivors = survivorLines(msg.reports)
		tm.hasResults = true
	case finishedMsg:
		tm.finished = true
	}

	return tm, nil
}

func (tm tuiModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		return tm, tea.Quit
	case "down", "j":
		tm.offset = min(tm.offset+1, tm.maxOffset())
	case "up", "k":
		tm.offset = max(tm.offset-1, 0)
	case "g", "home":
		tm.offset = 0
	case "G", "end":
		tm.offset = tm.maxOffset()
	case "d", "pgdown":
		tm.offset = min(tm.offset+tm.linesPerPage(), tm.maxOffset())
	case "u", "pgup":
		tm.offset = max(tm.offset-tm.linesPerPage(), 0)
	}

	return tm, nil
}

func (tm tuiModel) linesPerPage() int {
	if tm.height == 0 {
		return 20
	}

	return max(tm.height-reservedLines, 1)
}

func (tm tuiModel) maxOffset() int {
	return max(len(tm.bodyLines())-tm.linesPerPage(), 0)
}

func (tm tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("jsgooze - mutation testing"))
	b.WriteString("\n\n")

	if tm.err != nil {
		b.WriteString(errorStyle.Render("error: " + tm.err.Error()))
		b.WriteString("\n")
	}

	switch {
	case tm.mode == ModeEstimate:
		tm.writePage(&b, tm.bodyLines())
		fmt.Fprintf(&b, "\n  %d mutations across %d file(s)\n", tm.estimateTotal, len(tm.estimate))
	case tm.hasResults:
		tm.writePage(&b, tm.bodyLines())
		fmt.Fprintf(&b, "\n  %s\n", formatSummary(tm.summary))
	default:
		tm.writeProgress(&b)
	}

	if tm.finished {
		b.WriteString(mutedStyle.Render("\n  ↑/k up | ↓/j down | g top | G bottom | q quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (tm tuiModel) writeProgress(b *strings.Builder) {
	if tm.shardCount > 1 {
		fmt.Fprintf(b, "  %d worker(s), shard %d/%d\n\n", tm.threads, tm.shardIndex, tm.shardCount)
	} else if tm.threads > 0 {
		fmt.Fprintf(b, "  %d worker(s)\n\n", tm.threads)
	}

	percent := 0.0
	if tm.upcoming > 0 {
		percent = float64(tm.completed) / float64(tm.upcoming)
	}

	fmt.Fprintf(b, "  %s %s %d/%d\n\n", tm.spinner.View(), tm.progress.ViewAs(percent), tm.completed, tm.upcoming)

	threads := make([]int, 0, len(tm.running))
	for id := range tm.running {
		threads = append(threads, id)
	}

	sort.Ints(threads)

	for _, id := range threads {
		fmt.Fprintf(b, "  %s\n", mutedStyle.Render(fmt.Sprintf("[%d] %s", id, tm.running[id])))
	}

	fmt.Fprintf(b, "\n  %s %s %s\n",
		killedStyle.Render(fmt.Sprintf("killed %d", tm.counts[m.Killed])),
		survivedStyle.Render(fmt.Sprintf("survived %d", tm.counts[m.Survived])),
		timedOutStyle.Render(fmt.Sprintf("timed out %d", tm.counts[m.TimedOut])),
	)
}

func (tm tuiModel) bodyLines() []string {
	if tm.mode == ModeEstimate {
		lines := make([]string, 0, len(tm.estimate))
		for _, row := range tm.estimate {
			lines = append(lines, fmt.Sprintf("  %s: %d", row.Path, row.Total))
		}

		return lines
	}

	lines := make([]string, 0, len(tm.files)+len(tm.survivors))
	for _, f := range tm.files {
		icon := killedStyle.Render("✓")
		if f.Survived > 0 {
			icon = survivedStyle.Render("✗")
		}

		lines = append(lines, fmt.Sprintf("  %s %s: %s", icon, f.Path, formatSummary(f)))
	}

	if len(tm.survivors) > 0 {
		lines = append(lines, "")
		lines = append(lines, tm.survivors...)
	}

	return lines
}

func (tm tuiModel) writePage(b *strings.Builder, lines []string) {
	if len(lines) == 0 {
		b.WriteString(mutedStyle.Render("  nothing to show"))
		b.WriteString("\n")

		return
	}

	start := min(tm.offset, len(lines))
	end := min(start+tm.linesPerPage(), len(lines))

	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if end-start < len(lines) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  lines %d-%d of %d", start+1, end, len(lines))))
		b.WriteString("\n")
	}
}

func formatSummary(s FileSummary) string {
	return fmt.Sprintf("%d mutants | killed %d | survived %d | timed out %d | untested %d",
		s.Total, s.Killed, s.Survived, s.TimedOut, s.Untested)
}

func survivorLines(reports []m.FileReport) []string {
	var lines []string

	for _, fr := range reports {
		for _, report := range fr.Reports {
			if report.Status != m.Survived {
				continue
			}

			lines = append(lines,
				fmt.Sprintf("  %s %s:%d", survivedStyle.Render(report.MutantID), fr.Source, report.Location.StartLine),
				"    - "+report.OriginalLine,
				"    + "+report.MutatedLine,
			)
		}
	}

	return lines
}
