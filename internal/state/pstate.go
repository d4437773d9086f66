package state

import (
	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/infoset"
	"github.com/jacoelho/dfdl/internal/bitio"
)

// PState is the parse-direction execution context: it consumes the bit
// stream and produces the infoset.
type PState struct {
	Context

	Reader *bitio.Reader

	root      *infoset.Node
	nodeStack []*infoset.Node
}

// NewPState returns a fresh parse context over data.
func NewPState(data []byte) *PState {
	return &PState{Reader: bitio.NewReader(data)}
}

// Root returns the infoset root produced so far.
func (p *PState) Root() *infoset.Node { return p.root }

// PushNode makes n the construction point for subsequent children. The
// first pushed node becomes the run's root.
func (p *PState) PushNode(n *infoset.Node) {
	if p.root == nil {
		p.root = n
	} else if len(p.nodeStack) > 0 {
		p.nodeStack[len(p.nodeStack)-1].AppendChild(n)
	}
	p.nodeStack = append(p.nodeStack, n)
}

// PopNode closes the current construction point.
func (p *PState) PopNode() error {
	if len(p.nodeStack) == 0 {
		return errors.NewUsage(errors.ErrUsage, "infoset construction stack underflow")
	}
	n := p.nodeStack[len(p.nodeStack)-1]
	p.nodeStack = p.nodeStack[:len(p.nodeStack)-1]
	if !p.Retain() && p.Mode() == Streaming && len(p.nodeStack) > 1 {
		// Caller does not need the tree and nothing defers on it; the
		// engine is permitted to release finished subtrees early.
		n.ReleaseChildren()
	}
	return nil
}

// CurrentNode returns the active construction point, or nil.
func (p *PState) CurrentNode() *infoset.Node {
	if len(p.nodeStack) == 0 {
		return nil
	}
	return p.nodeStack[len(p.nodeStack)-1]
}

// Mark snapshots the positions a choice alternative may disturb.
type Mark struct {
	bitPos     int64
	diagCount  int
	nodeDepth  int
	childCount int
}

// Mark captures the current stream, diagnostic, and construction
// positions before speculatively parsing a choice alternative.
func (p *PState) Mark() Mark {
	m := Mark{
		bitPos:    p.Reader.BitPos(),
		diagCount: len(p.diags),
		nodeDepth: len(p.nodeStack),
	}
	if cur := p.CurrentNode(); cur != nil {
		m.childCount = len(cur.Children())
	}
	return m
}

// Reset restores a previously captured mark after a failed alternative.
func (p *PState) Reset(m Mark) error {
	if err := p.Reader.SeekBit(m.bitPos); err != nil {
		return err
	}
	// Diagnostics are most-recent-first, so entries recorded after the
	// mark occupy the front of the list.
	if extra := len(p.diags) - m.diagCount; extra > 0 {
		p.diags = p.diags[extra:]
	}
	if len(p.nodeStack) > m.nodeDepth {
		p.nodeStack = p.nodeStack[:m.nodeDepth]
	}
	if len(p.nodeStack) == 0 {
		if m.nodeDepth == 0 {
			p.root = nil
		}
		return nil
	}
	p.nodeStack[len(p.nodeStack)-1].TruncateChildren(m.childCount)
	return nil
}
