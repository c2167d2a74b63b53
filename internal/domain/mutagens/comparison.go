package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// comparisonAlternatives maps each relational/equality operator to its
// boundary shift and its negation.
var comparisonAlternatives = map[string][]string{
	"<":   {"<=", ">="},
	"<=":  {"<", ">"},
	">":   {">=", "<="},
	">=":  {">", "<"},
	"==":  {"!="},
	"!=":  {"=="},
	"===": {"!=="},
	"!==": {"==="},
}

// GenerateComparisonMutations swaps relational and equality operators.
func GenerateComparisonMutations(node m.Node, nodes *m.NodeSet, content []byte, source m.Source) []m.Mutation {
	if node.Type() != nodeBinaryExpression {
		return nil
	}

	op := node.Operator()

	alternatives, ok := comparisonAlternatives[op]
	if !ok {
		return nil
	}

	loc, gap, offset, ok := binaryOperatorSpan(node, nodes, content)
	if !ok {
		return nil
	}

	return replaceOperator(m.MutationComparison, source, loc, gap, offset, op, alternatives)
}
