// Package infoset defines the structured data tree exchanged between the
// byte representation and an application, and the ordered event stream
// used to traverse it without buffering whole documents.
package infoset

import (
	"fmt"
	"strings"
)

// Kind tags the node variant. Every consumption site switches
// exhaustively on it.
type Kind uint8

const (
	// KindSimple is a scalar leaf.
	KindSimple Kind = iota
	// KindComplex is an element with ordered children.
	KindComplex
	// KindArray is a repetition of homogeneous children.
	KindArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindComplex:
		return "complex"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Node is one node of the data tree. Exactly one variant applies per Kind:
// simple nodes carry a value, complex and array nodes carry children.
//
// A simple node's value may be unresolved until a deferred-evaluation pass
// completes; Value reports resolution state alongside the value.
type Node struct {
	Kind      Kind
	Name      string
	Namespace string

	value    any
	resolved bool

	children []*Node
	parent   *Node
}

// NewSimple builds a resolved scalar node.
func NewSimple(name string, value any) *Node {
	return &Node{Kind: KindSimple, Name: name, value: value, resolved: true}
}

// NewPendingSimple builds a scalar node whose value is not yet resolved.
func NewPendingSimple(name string) *Node {
	return &Node{Kind: KindSimple, Name: name}
}

// NewComplex builds an element node with ordered children.
func NewComplex(name string, children ...*Node) *Node {
	n := &Node{Kind: KindComplex, Name: name}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// NewArray builds an array node with homogeneous children.
func NewArray(name string, children ...*Node) *Node {
	n := &Node{Kind: KindArray, Name: name}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// Value returns the scalar value and whether it has been resolved.
// It is meaningful only for KindSimple nodes.
func (n *Node) Value() (any, bool) { return n.value, n.resolved }

// SetValue resolves the scalar value.
func (n *Node) SetValue(v any) {
	n.value = v
	n.resolved = true
}

// Resolved reports whether a simple node's value is available.
func (n *Node) Resolved() bool { return n.resolved }

// Children returns the ordered children.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the enclosing node, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// AppendChild attaches a child, setting its parent link.
func (n *Node) AppendChild(c *Node) {
	if c == nil {
		return
	}
	c.parent = n
	n.children = append(n.children, c)
}

// ReleaseChildren drops child references so nodes can be reclaimed.
// Only legal when the run's retention flag is off and no deferred
// evaluation still needs the subtree.
func (n *Node) ReleaseChildren() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// TruncateChildren drops children beyond the first n, detaching their
// parent links. Used to roll back speculative construction.
func (n *Node) TruncateChildren(keep int) {
	if keep < 0 || keep >= len(n.children) {
		return
	}
	for _, c := range n.children[keep:] {
		c.parent = nil
	}
	n.children = n.children[:keep]
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path renders a slash-separated path from the root, for diagnostics.
func (n *Node) Path() string {
	if n == nil {
		return ""
	}
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.Name)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString("/")
		b.WriteString(parts[i])
	}
	return b.String()
}

// String renders the node for debugging.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindSimple:
		if !n.resolved {
			return fmt.Sprintf("%s=<pending>", n.Name)
		}
		return fmt.Sprintf("%s=%v", n.Name, n.value)
	default:
		return fmt.Sprintf("%s(%s, %d children)", n.Name, n.Kind, len(n.children))
	}
}
