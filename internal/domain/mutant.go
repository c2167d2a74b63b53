package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// Mutant is one mutation applied to one source file: the mutated text, the
// artifact it was persisted to, and the verdict of testing it.
//
// A Mutant is owned by a single worker; it holds no lock.
type Mutant struct {
	mutation        m.Mutation
	filename        m.Path
	originalCode    string
	location        m.MutatedLocation
	originalLine    string
	mutatedLine     string
	mutatedCode     string
	mutatedFilename m.Path
	status          m.MutantStatus
	testsRan        []string
	persister       adapter.TempFileAdapter
}

// NewMutant replaces the [StartCol, EndCol) span of line StartLine of
// originalCode with substitute and persists the result through persister.
//
// It fails with model.ErrInvalidLocation for multi-line locations, lines or
// columns outside the source, and substitutes containing line breaks, and
// with model.ErrPersistence when the artifact cannot be written.
func NewMutant(
	ctx context.Context,
	persister adapter.TempFileAdapter,
	mutation m.Mutation,
	filename m.Path,
	originalCode string,
	substitute string,
	location m.MutatedLocation,
) (*Mutant, error) {
	if persister == nil {
		return nil, fmt.Errorf("%w: missing persister", m.ErrPersistence)
	}

	lines := strings.Split(originalCode, "\n")

	if err := validateLocation(lines, substitute, location); err != nil {
		return nil, err
	}

	idx := location.StartLine - 1
	original := lines[idx]
	mutated := original[:location.StartCol] + substitute + original[location.EndCol:]

	mutatedLines := slices.Clone(lines)
	mutatedLines[idx] = mutated

	mt := &Mutant{
		mutation:     mutation,
		filename:     filename,
		originalCode: originalCode,
		location:     location,
		originalLine: strings.TrimSpace(original),
		mutatedLine:  strings.TrimSpace(mutated),
		mutatedCode:  strings.Join(mutatedLines, "\n"),
		status:       m.Untested,
		persister:    persister,
	}

	if err := mt.save(ctx); err != nil {
		return nil, err
	}

	return mt, nil
}

func validateLocation(lines []string, substitute string, loc m.MutatedLocation) error {
	if !loc.SingleLine() {
		return fmt.Errorf("%w: %s spans lines %d to %d", m.ErrInvalidLocation, loc, loc.StartLine, loc.EndLine)
	}

	if loc.StartLine < 1 || loc.StartLine > len(lines) {
		return fmt.Errorf("%w: line %d outside source of %d lines", m.ErrInvalidLocation, loc.StartLine, len(lines))
	}

	line := lines[loc.StartLine-1]
	if loc.StartCol < 0 || loc.StartCol > loc.EndCol || loc.EndCol > len(line) {
		return fmt.Errorf("%w: columns [%d, %d) outside line of length %d", m.ErrInvalidLocation, loc.StartCol, loc.EndCol, len(line))
	}

	if strings.ContainsAny(substitute, "\r\n") {
		return fmt.Errorf("%w: substitute %q contains a line break", m.ErrInvalidLocation, substitute)
	}

	return nil
}

func (mt *Mutant) save(ctx context.Context) error {
	path, err := mt.persister.CreateTemp(ctx, mt.filename, []byte(mt.mutatedCode))
	if err != nil {
		slog.Error("Failed to persist mutant", "file", mt.filename, "mutation", mt.mutation.ID, "error", err)
		return wrapPersistence(err)
	}

	mt.mutatedFilename = path

	return nil
}

// ID returns the id of the mutation this mutant applies.
func (mt *Mutant) ID() string { return mt.mutation.ID }

// ColumnNumber returns the column the mutation points at.
func (mt *Mutant) ColumnNumber() int { return mt.location.MutatedCol }

// Filename returns the path of the mutated source file.
func (mt *Mutant) Filename() m.Path { return mt.filename }

// LineNumber returns the mutated line.
func (mt *Mutant) LineNumber() int { return mt.location.StartLine }

// Location returns the replaced span.
func (mt *Mutant) Location() m.MutatedLocation { return mt.location }

// MutatedCode returns the complete mutated source.
func (mt *Mutant) MutatedCode() string { return mt.mutatedCode }

// MutatedFilename returns where the mutated source was persisted.
func (mt *Mutant) MutatedFilename() m.Path { return mt.mutatedFilename }

// MutatedLine returns the mutated line, trimmed for display.
func (mt *Mutant) MutatedLine() string { return mt.mutatedLine }

// Mutation returns the mutation applied.
func (mt *Mutant) Mutation() m.Mutation { return mt.mutation }

// OriginalLine returns the original line, trimmed for display.
func (mt *Mutant) OriginalLine() string { return mt.originalLine }

// Status returns the current outcome classification.
func (mt *Mutant) Status() m.MutantStatus { return mt.status }

// TestsRan returns the identifiers of all tests executed against the mutant.
func (mt *Mutant) TestsRan() []string { return slices.Clone(mt.testsRan) }

// InsertMutatedFile returns a copy of sourceFiles with the mutant's source
// file replaced by the mutated artifact. sourceFiles is not modified.
func (mt *Mutant) InsertMutatedFile(sourceFiles []m.Path) ([]m.Path, error) {
	idx := slices.Index(sourceFiles, mt.filename)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", m.ErrMissingFile, mt.filename)
	}

	out := slices.Clone(sourceFiles)
	out[idx] = mt.mutatedFilename

	return out, nil
}

// Remove deletes the persisted artifact. In-memory state stays readable.
func (mt *Mutant) Remove(ctx context.Context) error {
	if err := mt.persister.RemoveTemp(ctx, mt.mutatedFilename); err != nil {
		slog.Error("Failed to remove mutant artifact", "path", mt.mutatedFilename, "error", err)
		return wrapPersistence(err)
	}

	return nil
}

// RecordOutcome applies a test verdict. Only an untested mutant may change
// status; any later attempt fails with model.ErrIllegalTransition and leaves
// the mutant unchanged.
func (mt *Mutant) RecordOutcome(outcome m.TestOutcome) error {
	next, err := nextStatus(mt.status, outcome.Verdict)
	if err != nil {
		return fmt.Errorf("mutant %s: %w", mt.mutation.ID, err)
	}

	mt.testsRan = append(mt.testsRan, outcome.Tests...)
	for _, name := range outcome.Failed {
		if !slices.Contains(mt.testsRan, name) {
			mt.testsRan = append(mt.testsRan, name)
		}
	}

	mt.status = next

	return nil
}

func nextStatus(current m.MutantStatus, verdict m.TestVerdict) (m.MutantStatus, error) {
	if current != m.Untested {
		return current, fmt.Errorf("%w: %s is terminal", m.ErrIllegalTransition, current)
	}

	switch verdict {
	case m.VerdictFailed:
		return m.Killed, nil
	case m.VerdictPassed:
		return m.Survived, nil
	case m.VerdictTimedOut:
		return m.TimedOut, nil
	default:
		return current, fmt.Errorf("%w: unknown verdict %d", m.ErrIllegalTransition, verdict)
	}
}

// Diff returns a unified diff between the original and mutated source.
func (mt *Mutant) Diff() string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(mt.originalCode),
		B:        difflib.SplitLines(mt.mutatedCode),
		FromFile: string(mt.filename),
		ToFile:   string(mt.filename) + " (mutated)",
		Context:  1,
	})
	if err != nil {
		return ""
	}

	return diff
}

// Report projects the mutant into its persisted form.
func (mt *Mutant) Report() m.Report {
	return m.Report{
		MutantID:     mt.mutation.ID,
		Type:         mt.mutation.Type,
		SourceFile:   mt.filename,
		Location:     mt.location,
		OriginalLine: mt.originalLine,
		MutatedLine:  mt.mutatedLine,
		Status:       mt.status,
		TestsRan:     mt.TestsRan(),
		Diff:         mt.Diff(),
	}
}

func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, m.ErrPersistence) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", m.ErrPersistence, err)
}
