package expr

import (
	"fmt"
	"strings"

	"github.com/antchfx/xpath"

	"github.com/jacoelho/dfdl/infoset"
)

// Navigator adapts an infoset tree to xpath.NodeNavigator. A virtual
// document node above the tree root makes absolute paths ("/r/x") work
// the way they do over XML documents.
type Navigator struct {
	root *infoset.Node
	// cur is nil at the virtual document node.
	cur *infoset.Node
}

// NewNavigator returns a navigator positioned at the document node of root.
func NewNavigator(root *infoset.Node) *Navigator {
	return &Navigator{root: root}
}

// Node returns the infoset node under the navigator, nil at the document node.
func (n *Navigator) Node() *infoset.Node { return n.cur }

// NodeType implements xpath.NodeNavigator.
func (n *Navigator) NodeType() xpath.NodeType {
	if n.cur == nil {
		return xpath.RootNode
	}
	return xpath.ElementNode
}

// LocalName implements xpath.NodeNavigator.
func (n *Navigator) LocalName() string {
	if n.cur == nil {
		return ""
	}
	return n.cur.Name
}

// Prefix implements xpath.NodeNavigator.
func (n *Navigator) Prefix() string { return "" }

// Value implements xpath.NodeNavigator: the concatenated scalar values of
// the subtree, mirroring the XPath element string value.
func (n *Navigator) Value() string {
	if n.cur == nil {
		return subtreeValue(n.root)
	}
	return subtreeValue(n.cur)
}

func subtreeValue(node *infoset.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind == infoset.KindSimple {
		v, ok := node.Value()
		if !ok {
			return ""
		}
		return scalarString(v)
	}
	var b strings.Builder
	for _, c := range node.Children() {
		b.WriteString(subtreeValue(c))
	}
	return b.String()
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Copy implements xpath.NodeNavigator.
func (n *Navigator) Copy() xpath.NodeNavigator {
	clone := *n
	return &clone
}

// MoveToRoot implements xpath.NodeNavigator.
func (n *Navigator) MoveToRoot() { n.cur = nil }

// MoveToParent implements xpath.NodeNavigator.
func (n *Navigator) MoveToParent() bool {
	if n.cur == nil {
		return false
	}
	if n.cur == n.root {
		n.cur = nil
		return true
	}
	p := n.cur.Parent()
	if p == nil {
		return false
	}
	n.cur = p
	return true
}

// MoveToNextAttribute implements xpath.NodeNavigator; the infoset has no attributes.
func (n *Navigator) MoveToNextAttribute() bool { return false }

// MoveToChild implements xpath.NodeNavigator.
func (n *Navigator) MoveToChild() bool {
	if n.cur == nil {
		if n.root == nil {
			return false
		}
		n.cur = n.root
		return true
	}
	children := n.cur.Children()
	if len(children) == 0 {
		return false
	}
	n.cur = children[0]
	return true
}

// MoveToFirst implements xpath.NodeNavigator.
func (n *Navigator) MoveToFirst() bool {
	if n.cur == nil || n.cur == n.root {
		return true
	}
	p := n.cur.Parent()
	if p == nil {
		return true
	}
	children := p.Children()
	if len(children) == 0 {
		return false
	}
	n.cur = children[0]
	return true
}

// MoveToNext implements xpath.NodeNavigator.
func (n *Navigator) MoveToNext() bool {
	return n.moveSibling(1)
}

// MoveToPrevious implements xpath.NodeNavigator.
func (n *Navigator) MoveToPrevious() bool {
	return n.moveSibling(-1)
}

func (n *Navigator) moveSibling(delta int) bool {
	if n.cur == nil || n.cur == n.root {
		return false
	}
	p := n.cur.Parent()
	if p == nil {
		return false
	}
	children := p.Children()
	for i, c := range children {
		if c == n.cur {
			j := i + delta
			if j < 0 || j >= len(children) {
				return false
			}
			n.cur = children[j]
			return true
		}
	}
	return false
}

// MoveTo implements xpath.NodeNavigator.
func (n *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*Navigator)
	if !ok || o.root != n.root {
		return false
	}
	n.cur = o.cur
	return true
}
