package domain

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	sitter "github.com/smacker/go-tree-sitter"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

const (
	nodeAssignment          = "assignment_expression"
	nodeAugmentedAssignment = "augmented_assignment_expression"
	nodeMemberExpression    = "member_expression"
	nodeJSXAttribute        = "jsx_attribute"
	nodeJSXNamespaceName    = "jsx_namespace_name"
)

// NodeCollector enumerates the mutation candidates of a parsed file.
type NodeCollector interface {
	Collect(ctx context.Context, file *adapter.ParsedFile) (*m.NodeSet, error)
}

type nodeCollector struct {
	excluded []string
}

// NewNodeCollector returns a collector that prunes every node matching one
// of the excluded expression tokens, together with its whole subtree.
func NewNodeCollector(excludedExpressions []string) NodeCollector {
	tokens := make([]string, 0, len(excludedExpressions))
	for _, token := range excludedExpressions {
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	return &nodeCollector{excluded: tokens}
}

// visit is one named node reached by the walk.
type visit struct {
	parent   int
	excluded bool
	attrs    m.NodeAttrs
}

type frame struct {
	node   *sitter.Node
	parent int
	field  string
}

// Collect walks the tree in pre-order. Excluded nodes are marked and their
// descendants never visited; the remaining nodes are then materialised in
// document order. The tree itself is left untouched.
func (c *nodeCollector) Collect(ctx context.Context, file *adapter.ParsedFile) (*m.NodeSet, error) {
	visits, err := c.mark(ctx, file)
	if err != nil {
		return nil, err
	}

	return materialize(visits), nil
}

func (c *nodeCollector) mark(ctx context.Context, file *adapter.ParsedFile) ([]visit, error) {
	var visits []visit

	stack := arraystack.New()
	stack.Push(frame{node: file.Root(), parent: -1})

	for !stack.Empty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top, _ := stack.Pop()
		f := top.(frame)

		attrs := nodeAttrs(f.node, f.field, file.Source)
		v := visit{parent: f.parent, attrs: attrs}
		v.excluded = c.matches(attrs)
		visits = append(visits, v)

		if v.excluded {
			slog.Debug("Excluded node", "file", file.Filename, "type", attrs.Type, "line", attrs.Start.Line)
			continue
		}

		pushChildren(stack, f.node, len(visits)-1)
	}

	return visits, nil
}

// pushChildren pushes named children in reverse so they pop in document
// order. Extras (comments) are not candidates.
func pushChildren(stack *arraystack.Stack, node *sitter.Node, parent int) {
	for i := int(node.ChildCount()) - 1; i >= 0; i-- {
		child := node.Child(i)
		if child == nil || !child.IsNamed() || child.IsExtra() {
			continue
		}

		stack.Push(frame{node: child, parent: parent, field: node.FieldNameForChild(i)})
	}
}

func materialize(visits []visit) *m.NodeSet {
	ids := make([]m.NodeID, len(visits))
	nodes := make([]m.Node, 0, len(visits))

	for i, v := range visits {
		if v.excluded {
			ids[i] = m.NoParent
			continue
		}

		parent := m.NoParent
		if v.parent >= 0 {
			parent = ids[v.parent]
		}

		id := m.NodeID(len(nodes))
		ids[i] = id
		nodes = append(nodes, m.NewNode(id, parent, v.attrs))
	}

	return m.NewNodeSet(nodes)
}

// matches reports whether a node is protected by an exclusion token: an
// assignment to a member whose property name contains a token
// (xx.propTypes = {}), or a JSX attribute whose name contains one.
func (c *nodeCollector) matches(attrs m.NodeAttrs) bool {
	if len(c.excluded) == 0 {
		return false
	}

	var name string

	switch attrs.Type {
	case nodeAssignment, nodeAugmentedAssignment:
		name = attrs.PropertyName
	case nodeJSXAttribute:
		name = attrs.AttributeName
	default:
		return false
	}

	if name == "" {
		return false
	}

	return slices.ContainsFunc(c.excluded, func(token string) bool {
		return strings.Contains(name, token)
	})
}

func nodeAttrs(node *sitter.Node, field string, src []byte) m.NodeAttrs {
	start := adapter.PointOf(node.StartPoint())
	end := adapter.PointOf(node.EndPoint())

	attrs := m.NodeAttrs{
		Type:      node.Type(),
		FieldName: field,
		Start:     start,
		End:       end,
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
	}

	if start.Line == end.Line {
		attrs.Text = node.Content(src)
	}

	if op := node.ChildByFieldName("operator"); op != nil {
		attrs.Operator = op.Type()
	}

	switch attrs.Type {
	case nodeAssignment, nodeAugmentedAssignment:
		attrs.PropertyName = assignedProperty(node, src)
	case nodeJSXAttribute:
		attrs.AttributeName = jsxAttributeName(node, src)
	}

	return attrs
}

func assignedProperty(node *sitter.Node, src []byte) string {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != nodeMemberExpression {
		return ""
	}

	property := left.ChildByFieldName("property")
	if property == nil {
		return ""
	}

	return property.Content(src)
}

func jsxAttributeName(node *sitter.Node, src []byte) string {
	if node.NamedChildCount() == 0 {
		return ""
	}

	name := node.NamedChild(0)
	switch name.Type() {
	case "property_identifier", "identifier", nodeJSXNamespaceName:
		return name.Content(src)
	default:
		return ""
	}
}
