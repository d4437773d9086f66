package infoset

import (
	"github.com/jacoelho/dfdl/errors"
)

// Cursor walks a data tree, yielding its event stream lazily with an
// explicit frame stack. No part of the tree is copied or buffered.
//
// Peek never advances: an end-array event can be recognized via lookahead
// without consuming it. Advance records the consumed event as the current
// event and tracks the active node.
type Cursor struct {
	frames []cursorFrame

	next    Event
	hasNext bool

	current Event
	curNode *Node
}

type cursorFrame struct {
	node *Node
	next int
}

// NewCursor returns a cursor positioned before the root's start event.
func NewCursor(root *Node) *Cursor {
	c := &Cursor{}
	if root != nil {
		c.next = startEvent(root)
		c.hasNext = true
		c.frames = append(c.frames, cursorFrame{node: root})
	}
	return c
}

func startEvent(n *Node) Event {
	if n.Kind == KindArray {
		return Event{Kind: StartArray, Node: n}
	}
	return Event{Kind: StartElement, Node: n}
}

func endEvent(n *Node) Event {
	if n.Kind == KindArray {
		return Event{Kind: EndArray, Node: n}
	}
	return Event{Kind: EndElement, Node: n}
}

// HasNext reports whether another event is available.
func (c *Cursor) HasNext() bool { return c.hasNext }

// Peek returns the next event without advancing.
func (c *Cursor) Peek() (Event, error) {
	if !c.hasNext {
		return Event{}, errors.NewProcessing(errors.ErrStreamExhausted, 0, c.curNode.Path(), "infoset event stream exhausted")
	}
	return c.next, nil
}

// Advance consumes and returns the next event, recording it as current.
func (c *Cursor) Advance() (Event, error) {
	if !c.hasNext {
		return Event{}, errors.NewProcessing(errors.ErrStreamExhausted, 0, c.curNode.Path(), "infoset event stream exhausted")
	}
	ev := c.next
	c.current = ev
	c.curNode = ev.Node
	c.computeNext()
	return ev, nil
}

// computeNext derives the event following the one just consumed.
func (c *Cursor) computeNext() {
	for len(c.frames) > 0 {
		top := &c.frames[len(c.frames)-1]
		children := top.node.Children()
		if top.next < len(children) {
			child := children[top.next]
			top.next++
			c.frames = append(c.frames, cursorFrame{node: child})
			c.next = startEvent(child)
			c.hasNext = true
			return
		}
		node := top.node
		c.frames = c.frames[:len(c.frames)-1]
		c.next = endEvent(node)
		c.hasNext = true
		return
	}
	c.next = Event{}
	c.hasNext = false
}

// Current returns the most recently consumed event.
func (c *Cursor) Current() Event { return c.current }

// CurrentNode returns the node of the most recently consumed event, so
// consumers can ask which structural node is active without re-deriving
// it from the event.
func (c *Cursor) CurrentNode() *Node { return c.curNode }
