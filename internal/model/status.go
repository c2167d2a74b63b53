package model

import "fmt"

// MutantStatus is the outcome classification of a mutant.
type MutantStatus int

const (
	// Untested is the initial status of every mutant.
	Untested MutantStatus = iota
	// Killed indicates at least one test failed against the mutant.
	Killed
	// Survived indicates every test passed against the mutant.
	Survived
	// TimedOut indicates the test run exceeded its time budget.
	TimedOut
)

func (s MutantStatus) String() string {
	switch s {
	case Untested:
		return "untested"
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case TimedOut:
		return "timedout"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s MutantStatus) Terminal() bool {
	return s == Killed || s == Survived || s == TimedOut
}

// MarshalText implements encoding.TextMarshaler.
func (s MutantStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only the four status
// names are accepted.
func (s *MutantStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "untested":
		*s = Untested
	case "killed":
		*s = Killed
	case "survived":
		*s = Survived
	case "timedout":
		*s = TimedOut
	default:
		return fmt.Errorf("unknown mutant status %q", text)
	}

	return nil
}

// TestVerdict is the kind of result reported by a test run.
type TestVerdict int

const (
	// VerdictPassed means all tests passed.
	VerdictPassed TestVerdict = iota
	// VerdictFailed means at least one test failed.
	VerdictFailed
	// VerdictTimedOut means the run was stopped for exceeding its time limit.
	VerdictTimedOut
)

func (v TestVerdict) String() string {
	switch v {
	case VerdictPassed:
		return "passed"
	case VerdictFailed:
		return "failed"
	case VerdictTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// TestOutcome is what the test runner reports for one run.
type TestOutcome struct {
	Verdict TestVerdict
	// Tests holds the identifiers of every test that was executed.
	Tests []string
	// Failed holds the identifiers of failing tests.
	Failed []string
	Output string
}

// Passed builds a passing outcome.
func Passed(tests ...string) TestOutcome {
	return TestOutcome{Verdict: VerdictPassed, Tests: tests}
}

// Failed builds a failing outcome.
func Failed(failed ...string) TestOutcome {
	return TestOutcome{Verdict: VerdictFailed, Failed: failed}
}

// TimedOutOutcome builds a timed-out outcome.
func TimedOutOutcome() TestOutcome {
	return TestOutcome{Verdict: VerdictTimedOut}
}
