package model

import "fmt"

// MutatedLocation is the span of original code replaced by a mutation.
// Lines are 1-based, columns are 0-based byte offsets forming the half-open
// range [StartCol, EndCol) within a single line.
type MutatedLocation struct {
	StartLine  int `yaml:"start_line"`
	EndLine    int `yaml:"end_line"`
	StartCol   int `yaml:"start_col"`
	EndCol     int `yaml:"end_col"`
	MutatedCol int `yaml:"mutated_col"`
}

// SingleLine reports whether the location starts and ends on the same line.
func (l MutatedLocation) SingleLine() bool {
	return l.StartLine == l.EndLine
}

func (l MutatedLocation) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", l.StartLine, l.StartCol, l.EndLine, l.EndCol)
}
