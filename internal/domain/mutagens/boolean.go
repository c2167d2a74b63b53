package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// GenerateBooleanMutations flips boolean literals and removes logical
// negation (!x -> x).
func GenerateBooleanMutations(node m.Node, nodes *m.NodeSet, _ []byte, source m.Source) []m.Mutation {
	switch node.Type() {
	case trueStr, falseStr:
		if mutation, ok := replaceNode(m.MutationBoolean, source, node, flipBoolean(node.Type())); ok {
			return []m.Mutation{mutation}
		}
	case nodeUnaryExpression:
		if node.Operator() != "!" {
			return nil
		}

		argument, ok := nodes.ChildByField(node, "argument")
		if !ok || !argument.SingleLine() {
			return nil
		}

		if mutation, ok := replaceNode(m.MutationBoolean, source, node, argument.Text()); ok {
			return []m.Mutation{mutation}
		}
	}

	return nil
}

// flipBoolean returns the opposite boolean literal.
func flipBoolean(original string) string {
	if original == trueStr {
		return falseStr
	}

	return trueStr
}
