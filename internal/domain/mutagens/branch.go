package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// branchConditions maps branching node types to the constant conditions
// their condition is replaced with. Loops only get false; a loop forced to
// true never terminates.
var branchConditions = map[string][]string{
	"if_statement":       {trueStr, falseStr},
	"ternary_expression": {trueStr, falseStr},
	"while_statement":    {falseStr},
	"do_statement":       {falseStr},
}

// GenerateBranchMutations replaces the condition of an if, while, do-while
// or ternary with a boolean constant.
func GenerateBranchMutations(node m.Node, nodes *m.NodeSet, _ []byte, source m.Source) []m.Mutation {
	constants, ok := branchConditions[node.Type()]
	if !ok {
		return nil
	}

	condition, ok := nodes.ChildByField(node, "condition")
	if !ok {
		return nil
	}

	// Statement conditions keep their parentheses.
	wrap := condition.Type() == "parenthesized_expression"

	var mutations []m.Mutation

	for _, constant := range constants {
		if wrap {
			constant = "(" + constant + ")"
		}

		if condition.Text() == constant {
			continue
		}

		if mutation, ok := replaceNode(m.MutationBranch, source, condition, constant); ok {
			mutations = append(mutations, mutation)
		}
	}

	return mutations
}
