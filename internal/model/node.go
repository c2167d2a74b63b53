package model

// NodeID addresses a Node inside a NodeSet arena.
type NodeID int

// NoParent is the parent reference of a root node.
const NoParent NodeID = -1

// Point is a position in source text. Line is 1-based, Column is a 0-based
// byte offset within the line.
type Point struct {
	Line   int
	Column int
}

// Node is a read-only record of one syntactic unit accepted as a mutation
// candidate. It is created by the node collector and cannot be changed
// afterwards; the parent relation is an index into the owning NodeSet.
type Node struct {
	id            NodeID
	parent        NodeID
	kind          string
	fieldName     string
	operator      string
	text          string
	propertyName  string
	attributeName string
	start         Point
	end           Point
	startByte     int
	endByte       int
}

// NodeAttrs carries the attributes used to build a Node.
type NodeAttrs struct {
	Type          string
	FieldName     string
	Operator      string
	Text          string
	PropertyName  string
	AttributeName string
	Start         Point
	End           Point
	StartByte     int
	EndByte       int
}

// NewNode builds a frozen Node.
func NewNode(id, parent NodeID, attrs NodeAttrs) Node {
	return Node{
		id:            id,
		parent:        parent,
		kind:          attrs.Type,
		fieldName:     attrs.FieldName,
		operator:      attrs.Operator,
		text:          attrs.Text,
		propertyName:  attrs.PropertyName,
		attributeName: attrs.AttributeName,
		start:         attrs.Start,
		end:           attrs.End,
		startByte:     attrs.StartByte,
		endByte:       attrs.EndByte,
	}
}

// ID returns the arena index of the node.
func (n Node) ID() NodeID { return n.id }

// Parent returns the arena index of the parent node, or NoParent.
func (n Node) Parent() NodeID { return n.parent }

// Type returns the syntax type tag, e.g. "assignment_expression".
func (n Node) Type() string { return n.kind }

// FieldName returns the field the node occupies in its parent, if any.
func (n Node) FieldName() string { return n.fieldName }

// Operator returns the operator token text for operator-bearing nodes.
func (n Node) Operator() string { return n.operator }

// Text returns the source text covered by the node.
func (n Node) Text() string { return n.text }

// PropertyName returns the accessed property of a member-access left-hand
// side for assignment nodes.
func (n Node) PropertyName() string { return n.propertyName }

// AttributeName returns the attribute name for JSX attribute nodes.
func (n Node) AttributeName() string { return n.attributeName }

// Start returns the start position.
func (n Node) Start() Point { return n.start }

// End returns the end position (exclusive column).
func (n Node) End() Point { return n.end }

// StartByte returns the byte offset of the node start in the source.
func (n Node) StartByte() int { return n.startByte }

// EndByte returns the byte offset of the node end in the source.
func (n Node) EndByte() int { return n.endByte }

// SingleLine reports whether the node starts and ends on the same line.
func (n Node) SingleLine() bool { return n.start.Line == n.end.Line }

// Location returns the node span as a MutatedLocation anchored at its start.
func (n Node) Location() MutatedLocation {
	return MutatedLocation{
		StartLine:  n.start.Line,
		EndLine:    n.end.Line,
		StartCol:   n.start.Column,
		EndCol:     n.end.Column,
		MutatedCol: n.start.Column,
	}
}

// NodeSet is an append-only arena of candidate nodes in document order.
type NodeSet struct {
	nodes    []Node
	children map[NodeID][]NodeID
}

// NewNodeSet wraps nodes whose IDs equal their index.
func NewNodeSet(nodes []Node) *NodeSet {
	children := make(map[NodeID][]NodeID)
	for _, n := range nodes {
		if n.parent != NoParent {
			children[n.parent] = append(children[n.parent], n.id)
		}
	}

	return &NodeSet{nodes: nodes, children: children}
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.nodes)
}

// At returns the node with the given id.
func (s *NodeSet) At(id NodeID) (Node, bool) {
	if s == nil || id < 0 || int(id) >= len(s.nodes) {
		return Node{}, false
	}

	return s.nodes[id], true
}

// ParentOf returns the parent of n, if it has one.
func (s *NodeSet) ParentOf(n Node) (Node, bool) {
	return s.At(n.parent)
}

// Nodes returns a copy of the nodes in document order.
func (s *NodeSet) Nodes() []Node {
	if s == nil {
		return nil
	}

	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)

	return out
}

// Children returns the candidate children of n in document order.
func (s *NodeSet) Children(n Node) []Node {
	if s == nil {
		return nil
	}

	ids := s.children[n.id]
	out := make([]Node, 0, len(ids))

	for _, id := range ids {
		out = append(out, s.nodes[id])
	}

	return out
}

// ChildByField returns the child of n occupying the given field.
func (s *NodeSet) ChildByField(n Node, field string) (Node, bool) {
	if s == nil {
		return Node{}, false
	}

	for _, id := range s.children[n.id] {
		if s.nodes[id].fieldName == field {
			return s.nodes[id], true
		}
	}

	return Node{}, false
}
