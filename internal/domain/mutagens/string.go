package mutagens

import (
	m "gooze.dev/pkg/jsgooze/internal/model"
)

const (
	nodeString = "string"

	fillerString = "Stryker was here!"
)

// module specifiers and directives must stay intact for the file to load.
var protectedStringParents = map[string]bool{
	"import_statement":          true,
	"export_statement":          true,
	"import_require_clause":     true,
	"external_module_reference": true,
}

var moduleLoaders = map[string]bool{
	"require": true,
	"import":  true,
}

// GenerateStringMutations empties non-empty string literals and fills empty ones.
func GenerateStringMutations(node m.Node, nodes *m.NodeSet, _ []byte, source m.Source) []m.Mutation {
	if node.Type() != nodeString || !node.SingleLine() {
		return nil
	}

	text := node.Text()
	if len(text) < 2 {
		return nil
	}

	if parent, ok := nodes.ParentOf(node); ok {
		if protectedStringParents[parent.Type()] || isDirective(parent, text) || isModuleArgument(parent, nodes) {
			return nil
		}
	}

	quote := text[:1]

	substitute := quote + quote
	if len(text) == 2 {
		substitute = quote + fillerString + quote
	}

	if mutation, ok := replaceNode(m.MutationString, source, node, substitute); ok {
		return []m.Mutation{mutation}
	}

	return nil
}

// isModuleArgument reports whether args is the argument list of a
// require(...) or dynamic import(...) call.
func isModuleArgument(args m.Node, nodes *m.NodeSet) bool {
	if args.Type() != "arguments" {
		return false
	}

	call, ok := nodes.ParentOf(args)
	if !ok || call.Type() != "call_expression" {
		return false
	}

	fn, ok := nodes.ChildByField(call, "function")
	if !ok {
		return false
	}

	return moduleLoaders[fn.Text()]
}

func isDirective(parent m.Node, text string) bool {
	if parent.Type() != "expression_statement" {
		return false
	}

	inner := text[1 : len(text)-1]

	return inner == "use strict" || inner == "use client" || inner == "use server"
}
