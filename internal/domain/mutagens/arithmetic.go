package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

var arithmeticOperators = []string{"+", "-", "*", "/", "%"}

// GenerateArithmeticMutations swaps the operator of an arithmetic binary
// expression for every other arithmetic operator.
func GenerateArithmeticMutations(node m.Node, nodes *m.NodeSet, content []byte, source m.Source) []m.Mutation {
	if node.Type() != nodeBinaryExpression || !isArithmeticOp(node.Operator()) {
		return nil
	}

	loc, gap, offset, ok := binaryOperatorSpan(node, nodes, content)
	if !ok {
		return nil
	}

	op := node.Operator()

	return replaceOperator(m.MutationArithmetic, source, loc, gap, offset, op, arithmeticAlternatives(op))
}

func isArithmeticOp(op string) bool {
	for _, candidate := range arithmeticOperators {
		if op == candidate {
			return true
		}
	}

	return false
}

// arithmeticAlternatives returns all alternative operators for mutation.
func arithmeticAlternatives(original string) []string {
	var alternatives []string

	for _, op := range arithmeticOperators {
		if op != original {
			alternatives = append(alternatives, op)
		}
	}

	return alternatives
}
