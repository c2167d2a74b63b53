package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

var unaryAlternatives = map[string]string{
	"-":  "+",
	"+":  "-",
	"++": "--",
	"--": "++",
}

// GenerateUnaryMutations swaps unary signs (-x <-> +x) and update operators
// (x++ <-> x--).
func GenerateUnaryMutations(node m.Node, nodes *m.NodeSet, _ []byte, source m.Source) []m.Mutation {
	op := node.Operator()

	alt, ok := unaryAlternatives[op]
	if !ok {
		return nil
	}

	argument, ok := nodes.ChildByField(node, "argument")
	if !ok {
		return nil
	}

	var loc m.MutatedLocation

	switch node.Type() {
	case nodeUnaryExpression:
		if op != "-" && op != "+" {
			return nil
		}

		loc = tokenAt(node.Start(), len(op))
	case nodeUpdateExpression:
		if op != "++" && op != "--" {
			return nil
		}

		if argument.StartByte() > node.StartByte() {
			loc = tokenAt(node.Start(), len(op))
		} else {
			loc = tokenAt(m.Point{Line: node.End().Line, Column: node.End().Column - len(op)}, len(op))
		}
	default:
		return nil
	}

	if loc.StartCol < 0 {
		return nil
	}

	return []m.Mutation{{
		Type:       m.MutationUnary,
		Source:     source,
		Location:   loc,
		Original:   op,
		Substitute: alt,
	}}
}

func tokenAt(start m.Point, width int) m.MutatedLocation {
	return m.MutatedLocation{
		StartLine:  start.Line,
		EndLine:    start.Line,
		StartCol:   start.Column,
		EndCol:     start.Column + width,
		MutatedCol: start.Column,
	}
}
