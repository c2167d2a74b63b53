package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

func TestNodeCollector_Collect(t *testing.T) {
	ctx := context.Background()

	t.Run("excluded assignment is pruned with its subtree", func(t *testing.T) {
		file := parseJS(t, "a.js", "a.b = 1;\n")

		nodes, err := NewNodeCollector([]string{"b"}).Collect(ctx, file)
		require.NoError(t, err)

		assert.Equal(t, []string{"program", "expression_statement"}, nodeTypes(nodes))
	})

	t.Run("without exclusions every named node is kept", func(t *testing.T) {
		file := parseJS(t, "a.js", "a.b = 1;\n")

		nodes, err := NewNodeCollector(nil).Collect(ctx, file)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"program",
			"expression_statement",
			"assignment_expression",
			"member_expression",
			"identifier",
			"property_identifier",
			"number",
		}, nodeTypes(nodes))

		assignment, ok := nodes.At(2)
		require.True(t, ok)
		assert.Equal(t, "b", assignment.PropertyName())
		assert.Equal(t, "a.b = 1", assignment.Text())

		left, ok := nodes.ChildByField(assignment, "left")
		require.True(t, ok)
		assert.Equal(t, "member_expression", left.Type())

		parent, ok := nodes.ParentOf(left)
		require.True(t, ok)
		assert.Equal(t, assignment.ID(), parent.ID())

		root, _ := nodes.At(0)
		assert.Equal(t, m.NoParent, root.Parent())
	})

	t.Run("tokens match by substring", func(t *testing.T) {
		file := parseJS(t, "a.js", "Button.propTypes = { a: 1 + 2 };\nconst c = 3 + 4;\n")

		nodes, err := NewNodeCollector([]string{"propTypes"}).Collect(ctx, file)
		require.NoError(t, err)

		var binaries []string
		for _, node := range nodes.Nodes() {
			if node.Type() == "binary_expression" {
				binaries = append(binaries, node.Text())
			}
		}

		assert.Equal(t, []string{"3 + 4"}, binaries)
	})

	t.Run("excluded jsx attribute", func(t *testing.T) {
		src := "const x = <A propTypes={1 + 2} size={3 * 4} />;\n"

		nodes, err := NewNodeCollector([]string{"propTypes"}).Collect(ctx, parseJS(t, "a.jsx", src))
		require.NoError(t, err)

		var attrs []string
		for _, node := range nodes.Nodes() {
			if node.Type() == "jsx_attribute" {
				attrs = append(attrs, node.AttributeName())
			}

			assert.NotEqual(t, "1 + 2", node.Text())
		}

		assert.Equal(t, []string{"size"}, attrs)
	})

	t.Run("comments are not candidates", func(t *testing.T) {
		file := parseJS(t, "a.js", "// note\nx; /* inline */\n")

		nodes, err := NewNodeCollector(nil).Collect(ctx, file)
		require.NoError(t, err)

		assert.NotContains(t, nodeTypes(nodes), "comment")
	})

	t.Run("nodes are in document order", func(t *testing.T) {
		file := parseJS(t, "a.js", "function f(a) {\n  return a + 1;\n}\nf(2);\n")

		nodes, err := NewNodeCollector(nil).Collect(ctx, file)
		require.NoError(t, err)

		all := nodes.Nodes()
		for i := 1; i < len(all); i++ {
			assert.Equal(t, m.NodeID(i), all[i].ID())
			assert.LessOrEqual(t, all[i-1].StartByte(), all[i].StartByte())
			assert.Less(t, all[i].Parent(), all[i].ID())
		}

		fn, _ := nodes.At(1)
		assert.Equal(t, "function_declaration", fn.Type())
		assert.False(t, fn.SingleLine())
		assert.Empty(t, fn.Text())
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewNodeCollector(nil).Collect(cancelled, parseJS(t, "a.js", "x;"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNodeCollector_Exclusions(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		src      string
		tokens   []string
		kept     []string
		dropped  []string
		binaries []string
		// emptied is the type of a kept node whose only child was excluded.
		emptied string
	}{
		{
			name:     "assignment nested in kept blocks",
			filename: "a.js",
			src:      "function f(){ if(x){ obj.inner.secret = () => 1 + 2; } }\nconst y = 3 + 4;\n",
			tokens:   []string{"secret"},
			kept:     []string{"program", "function_declaration", "if_statement", "statement_block", "expression_statement"},
			dropped:  []string{"assignment_expression", "arrow_function", "member_expression"},
			binaries: []string{"3 + 4"},
			emptied:  "expression_statement",
		},
		{
			name:     "augmented assignment",
			filename: "a.js",
			src:      "obj.total += 1 + 2;\nlet y = 3 + 4;\n",
			tokens:   []string{"total"},
			kept:     []string{"program", "expression_statement", "lexical_declaration"},
			dropped:  []string{"augmented_assignment_expression"},
			binaries: []string{"3 + 4"},
			emptied:  "expression_statement",
		},
		{
			name:     "tsx attribute",
			filename: "view.tsx",
			src:      "const V = (a: number) => <div title={1 + 2} className={a + 3} />;\n",
			tokens:   []string{"title"},
			kept:     []string{"program", "arrow_function", "jsx_self_closing_element", "jsx_attribute"},
			binaries: []string{"a + 3"},
		},
		{
			name:     "unmatched token keeps everything",
			filename: "a.js",
			src:      "obj.total += 1 + 2;\n",
			tokens:   []string{"secret"},
			kept:     []string{"augmented_assignment_expression", "member_expression"},
			binaries: []string{"1 + 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := NewNodeCollector(tt.tokens).Collect(context.Background(), parseJS(t, tt.filename, tt.src))
			require.NoError(t, err)

			types := nodeTypes(nodes)
			for _, typ := range tt.kept {
				assert.Contains(t, types, typ)
			}

			for _, typ := range tt.dropped {
				assert.NotContains(t, types, typ)
			}

			var binaries []string

			hasChildren := make(map[m.NodeID]bool)

			for _, node := range nodes.Nodes() {
				if node.Type() == "binary_expression" {
					binaries = append(binaries, node.Text())
				}

				if node.Parent() != m.NoParent {
					hasChildren[node.Parent()] = true

					parent, ok := nodes.ParentOf(node)
					require.True(t, ok)
					assert.Less(t, parent.ID(), node.ID())
				}
			}

			assert.Equal(t, tt.binaries, binaries)

			if tt.emptied == "" {
				return
			}

			var emptied bool

			for _, node := range nodes.Nodes() {
				if node.Type() == tt.emptied && !hasChildren[node.ID()] {
					emptied = true
				}
			}

			assert.True(t, emptied, "no childless %s left behind", tt.emptied)
		})
	}
}
