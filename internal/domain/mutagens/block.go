package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

const nodeStatementBlock = "statement_block"

var functionTypes = map[string]bool{
	"function_declaration":           true,
	"function":                       true,
	"function_expression":            true,
	"arrow_function":                 true,
	"method_definition":              true,
	"generator_function":             true,
	"generator_function_declaration": true,
}

// GenerateBlockMutations replaces a non-empty single-line function body with
// an empty block.
func GenerateBlockMutations(node m.Node, nodes *m.NodeSet, _ []byte, source m.Source) []m.Mutation {
	if node.Type() != nodeStatementBlock || !node.SingleLine() {
		return nil
	}

	parent, ok := nodes.ParentOf(node)
	if !ok || !functionTypes[parent.Type()] {
		return nil
	}

	if len(nodes.Children(node)) == 0 {
		return nil
	}

	if mutation, ok := replaceNode(m.MutationBlock, source, node, "{}"); ok {
		return []m.Mutation{mutation}
	}

	return nil
}
