package model

// MutationType identifies the operator that produced a mutation.
type MutationType string

const (
	// MutationArithmetic swaps arithmetic operators (+, -, *, /, %).
	MutationArithmetic MutationType = "arithmetic"
	// MutationBoolean flips boolean literals and drops logical negation.
	MutationBoolean MutationType = "boolean"
	// MutationComparison swaps relational and equality operators.
	MutationComparison MutationType = "comparison"
	// MutationLogical swaps logical operators (&&, ||, ??).
	MutationLogical MutationType = "logical"
	// MutationUnary swaps unary signs and update operators.
	MutationUnary MutationType = "unary"
	// MutationString replaces string literals.
	MutationString MutationType = "string"
	// MutationBlock empties single-line function bodies.
	MutationBlock MutationType = "block"
	// MutationBranch forces branch conditions to a constant.
	MutationBranch MutationType = "branch"
)

// AllMutationTypes lists every supported operator in catalog order.
var AllMutationTypes = []MutationType{
	MutationArithmetic,
	MutationBoolean,
	MutationComparison,
	MutationLogical,
	MutationUnary,
	MutationString,
	MutationBlock,
	MutationBranch,
}

// Valid reports whether t is part of the operator catalog.
func (t MutationType) Valid() bool {
	for _, known := range AllMutationTypes {
		if t == known {
			return true
		}
	}

	return false
}

// Mutation is a proposed substitution of one single-line span of a source.
type Mutation struct {
	ID         string
	Type       MutationType
	Source     Source
	Location   MutatedLocation
	Original   string
	Substitute string
}
