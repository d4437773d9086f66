package combinator

import (
	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/infoset"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// Element executes one element occurrence: it owns the infoset node
// lifecycle and the child-position counter scope, and runs its compiled
// parts (alignment, delimiter regions, body) in schema-mandated order.
type Element struct {
	base
	parts []Node
}

// NewElement builds an element combinator around its ordered parts.
func NewElement(rd *runtime.TermRuntimeData, parts []Node) *Element {
	return &Element{base: base{rd: rd}, parts: parts}
}

// Kind implements Node.
func (e *Element) Kind() string { return "element" }

// Children implements Node.
func (e *Element) Children() []Node { return e.parts }

// Parse implements Node.
func (e *Element) Parse(ps *state.PState) error {
	scoped := e.rd.HasDelimiters()
	if scoped {
		ps.PushDelimiterScope(delimiterScope(e.rd))
	}

	var node *infoset.Node
	if e.rd.IsSimple() {
		node = infoset.NewPendingSimple(e.rd.Name)
	} else {
		node = infoset.NewComplex(e.rd.Name)
	}
	ps.PushNode(node)
	complex := !e.rd.IsSimple()
	if complex {
		ps.EnterChildren()
	}

	err := e.runParts(ps, nil)

	if complex {
		if e := ps.ExitChildren(); err == nil {
			err = e
		}
	}
	if popErr := ps.PopNode(); err == nil {
		err = popErr
	}
	if !complex && err == nil {
		ps.IncrementChildPos()
	}
	if scoped {
		if popErr := ps.PopDelimiterScope(); err == nil {
			err = popErr
		}
	}
	return err
}

// Unparse implements Node.
func (e *Element) Unparse(us *state.UState) error {
	ev, err := us.Cursor().Advance()
	if err != nil {
		return err
	}
	if ev.Kind != infoset.StartElement || ev.Node.Name != e.rd.Name {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), ev.Node.Path(),
			"expected element %q, infoset has %s %q", e.rd.Name, ev.Kind, ev.Node.Name)
	}

	scoped := e.rd.HasDelimiters()
	if scoped {
		us.PushDelimiterScope(delimiterScope(e.rd))
	}
	complex := !e.rd.IsSimple()
	if complex {
		us.EnterChildren()
	}

	uerr := e.runParts(nil, us)

	if complex {
		if e := us.ExitChildren(); uerr == nil {
			uerr = e
		}
	}
	if !complex && uerr == nil {
		us.IncrementChildPos()
	}
	if scoped {
		if popErr := us.PopDelimiterScope(); uerr == nil {
			uerr = popErr
		}
	}
	if uerr != nil {
		return uerr
	}

	end, err := us.Cursor().Advance()
	if err != nil {
		return err
	}
	if end.Kind != infoset.EndElement {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), end.Node.Path(),
			"expected end of element %q, infoset has %s", e.rd.Name, end.Kind)
	}
	return nil
}

// runParts drives the compiled parts for whichever direction is active.
func (e *Element) runParts(ps *state.PState, us *state.UState) error {
	for _, p := range e.parts {
		var err error
		if ps != nil {
			err = p.Parse(ps)
		} else {
			err = p.Unparse(us)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
