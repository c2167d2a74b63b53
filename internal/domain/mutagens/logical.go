package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

var logicalAlternatives = map[string][]string{
	"&&": {"||"},
	"||": {"&&"},
	"??": {"&&"},
}

// GenerateLogicalMutations swaps logical operators.
func GenerateLogicalMutations(node m.Node, nodes *m.NodeSet, content []byte, source m.Source) []m.Mutation {
	if node.Type() != nodeBinaryExpression {
		return nil
	}

	op := node.Operator()

	alternatives, ok := logicalAlternatives[op]
	if !ok {
		return nil
	}

	loc, gap, offset, ok := binaryOperatorSpan(node, nodes, content)
	if !ok {
		return nil
	}

	return replaceOperator(m.MutationLogical, source, loc, gap, offset, op, alternatives)
}
