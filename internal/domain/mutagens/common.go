// Package mutagens provides the catalog of JavaScript/TypeScript mutation
// operators. Each generator inspects one candidate node and proposes zero or
// more single-line substitutions.
package mutagens

import (
	"strings"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

// Generator proposes mutations for one candidate node. IDs are assigned by
// the caller.
type Generator func(node m.Node, nodes *m.NodeSet, content []byte, source m.Source) []m.Mutation

const (
	nodeBinaryExpression = "binary_expression"
	nodeUnaryExpression  = "unary_expression"
	nodeUpdateExpression = "update_expression"
)

// binaryOperatorSpan locates the operator token of a binary expression. It
// returns the span between the left and right operands, the text of that
// span, and the offset of the operator within it.
func binaryOperatorSpan(node m.Node, nodes *m.NodeSet, content []byte) (m.MutatedLocation, string, int, bool) {
	left, ok := nodes.ChildByField(node, "left")
	if !ok {
		return m.MutatedLocation{}, "", 0, false
	}

	right, ok := nodes.ChildByField(node, "right")
	if !ok {
		return m.MutatedLocation{}, "", 0, false
	}

	return gapSpan(left, right, node.Operator(), content)
}

// gapSpan returns the single-line span between two sibling nodes that holds op.
func gapSpan(before, after m.Node, op string, content []byte) (m.MutatedLocation, string, int, bool) {
	if before.End().Line != after.Start().Line {
		return m.MutatedLocation{}, "", 0, false
	}

	if before.EndByte() > after.StartByte() || after.StartByte() > len(content) {
		return m.MutatedLocation{}, "", 0, false
	}

	gap := string(content[before.EndByte():after.StartByte()])

	offset := operatorOffset(gap, op)
	if offset < 0 {
		return m.MutatedLocation{}, "", 0, false
	}

	loc := m.MutatedLocation{
		StartLine:  before.End().Line,
		EndLine:    after.Start().Line,
		StartCol:   before.End().Column,
		EndCol:     after.Start().Column,
		MutatedCol: before.End().Column + offset,
	}

	return loc, gap, offset, true
}

// operatorOffset returns the index of op in gap, skipping block comments.
// A line comment ends the search since the operand cannot follow it on the
// same line.
func operatorOffset(gap, op string) int {
	if op == "" {
		return -1
	}

	for i := 0; i < len(gap); {
		rest := gap[i:]

		switch {
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return -1
			}

			i += end + 4
		case strings.HasPrefix(rest, "//"):
			return -1
		case strings.HasPrefix(rest, op):
			return i
		default:
			i++
		}
	}

	return -1
}

// replaceOperator builds mutations swapping op for each alternative inside gap.
func replaceOperator(
	mutationType m.MutationType,
	source m.Source,
	loc m.MutatedLocation,
	gap string,
	offset int,
	op string,
	alternatives []string,
) []m.Mutation {
	mutations := make([]m.Mutation, 0, len(alternatives))

	for _, alt := range alternatives {
		mutations = append(mutations, m.Mutation{
			Type:       mutationType,
			Source:     source,
			Location:   loc,
			Original:   gap,
			Substitute: gap[:offset] + alt + gap[offset+len(op):],
		})
	}

	return mutations
}

// replaceNode builds a mutation substituting the whole single-line node.
func replaceNode(mutationType m.MutationType, source m.Source, node m.Node, substitute string) (m.Mutation, bool) {
	if !node.SingleLine() {
		return m.Mutation{}, false
	}

	return m.Mutation{
		Type:       mutationType,
		Source:     source,
		Location:   node.Location(),
		Original:   node.Text(),
		Substitute: substitute,
	}, true
}
