package combinator

import (
	"fmt"

	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// Sequence executes its children in compiled order. A sequence with zero
// children is invalid: the grammar compiler must eliminate empty
// sequences before instantiation, so hitting one here is a compiler
// defect, not a recoverable condition.
type Sequence struct {
	base
	children []Node
}

// NewSequence builds a sequence combinator. It panics on zero children;
// see the type comment.
func NewSequence(rd *runtime.TermRuntimeData, children []Node) *Sequence {
	if len(children) == 0 {
		panic(fmt.Sprintf("sequence %q instantiated with zero children: grammar compiler defect", rd.Name))
	}
	return &Sequence{base: base{rd: rd}, children: children}
}

// Kind implements Node.
func (s *Sequence) Kind() string { return "sequence" }

// Children implements Node.
func (s *Sequence) Children() []Node { return s.children }

// Parse implements Node. The delimiter scope and group counter pushed on
// entry are popped on every exit path, including errors.
func (s *Sequence) Parse(ps *state.PState) error {
	scoped := s.rd.HasDelimiters()
	if scoped {
		ps.PushDelimiterScope(delimiterScope(s.rd))
	}
	ps.EnterGroup()

	err := s.parseChildren(ps)

	if e := ps.ExitGroup(); err == nil {
		err = e
	}
	if scoped {
		if e := ps.PopDelimiterScope(); err == nil {
			err = e
		}
	}
	return err
}

func (s *Sequence) parseChildren(ps *state.PState) error {
	for _, c := range s.children {
		if err := c.Parse(ps); err != nil {
			return err
		}
		ps.IncrementGroupPos()
	}
	return nil
}

// Unparse implements Node, symmetric to Parse.
func (s *Sequence) Unparse(us *state.UState) error {
	scoped := s.rd.HasDelimiters()
	if scoped {
		us.PushDelimiterScope(delimiterScope(s.rd))
	}
	us.EnterGroup()

	err := s.unparseChildren(us)

	if e := us.ExitGroup(); err == nil {
		err = e
	}
	if scoped {
		if e := us.PopDelimiterScope(); err == nil {
			err = e
		}
	}
	return err
}

func (s *Sequence) unparseChildren(us *state.UState) error {
	for _, c := range s.children {
		if err := c.Unparse(us); err != nil {
			return err
		}
		us.IncrementGroupPos()
	}
	return nil
}
