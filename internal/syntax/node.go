// Package syntax parses Elixir source into a generic tagged tree.
//
// The tree is deliberately plain: each node carries a kind tag, the source
// line, and ordered children. Leaf nodes additionally carry their source
// text. Downstream extraction dispatches on kind tags only, so tests can
// build trees by hand without touching tree-sitter.
package syntax

// Node is one node of the parsed tree. Children are the named children of
// the underlying grammar node, in source order. Text is set on leaves only.
type Node struct {
	Kind     string
	Text     string
	Line     int
	Children []*Node
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// ChildOfKind returns the first child with the given kind, or nil.
func (n *Node) ChildOfKind(kind string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n != nil && len(n.Children) == 0
}
