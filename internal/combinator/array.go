package combinator

import (
	"github.com/jf-tech/go-corelib/maths"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/infoset"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
	"github.com/jacoelho/dfdl/schema"
)

// unknownBound is pushed on array entry before a dynamic bound resolves.
const unknownBound = int64(-1)

// Array repeats its member combinator, driving the array-position counter
// and the occurs-bound stack. Entering the array pushes a new bound
// frame; a bound resolved dynamically refines that frame in place rather
// than pushing a new one.
type Array struct {
	base
	member Node
}

// NewArray builds an array combinator around the member element.
func NewArray(rd *runtime.TermRuntimeData, member Node) *Array {
	return &Array{base: base{rd: rd}, member: member}
}

// Kind implements Node.
func (a *Array) Kind() string { return "array" }

// Children implements Node.
func (a *Array) Children() []Node { return []Node{a.member} }

// resolveBound refines the just-pushed bound frame once the bound is
// known. Unbounded arrays stay at the maximum until data runs out.
func (a *Array) resolveBound(ctx *state.Context, root *infoset.Node) (int64, error) {
	switch a.rd.OccursKind {
	case schema.OccursFixed:
		if err := ctx.ReplaceOccursBound(int64(a.rd.OccursCount)); err != nil {
			return 0, err
		}
		return int64(a.rd.OccursCount), nil
	case schema.OccursExpression:
		n, resolved, err := a.rd.OccursExpr.EvaluateNumber(root)
		if err != nil {
			return 0, err
		}
		if !resolved {
			return 0, errors.NewProcessing(errors.ErrProcessing, 0, "",
				"occurs bound of %q references unresolved data", a.rd.Name)
		}
		if err := ctx.ReplaceOccursBound(n); err != nil {
			return 0, err
		}
		return n, nil
	default:
		bound := int64(maths.MaxIntValue)
		if err := ctx.ReplaceOccursBound(bound); err != nil {
			return 0, err
		}
		return bound, nil
	}
}

// Parse implements Node.
func (a *Array) Parse(ps *state.PState) error {
	ps.PushNode(infoset.NewArray(a.rd.Name))
	ps.EnterArray()
	ps.EnterChildren()
	ps.PushOccursBound(unknownBound)

	err := a.parseMembers(ps)

	if e := ps.PopOccursBound(); err == nil {
		err = e
	}
	if e := ps.ExitChildren(); err == nil {
		err = e
	}
	if e := ps.ExitArray(); err == nil {
		err = e
	}
	if e := ps.PopNode(); err == nil {
		err = e
	}
	return err
}

func (a *Array) parseMembers(ps *state.PState) error {
	bound, err := a.resolveBound(&ps.Context, ps.Root())
	if err != nil {
		return err
	}
	unbounded := a.rd.OccursKind == schema.OccursUnbounded
	for i := int64(0); i < bound; i++ {
		if unbounded {
			if ps.Reader.Remaining() == 0 {
				return nil
			}
			mark := ps.Mark()
			if err := a.member.Parse(ps); err != nil {
				return ps.Reset(mark)
			}
		} else if err := a.member.Parse(ps); err != nil {
			return err
		}
		ps.IncrementArrayPos()
	}
	return nil
}

// Unparse implements Node.
func (a *Array) Unparse(us *state.UState) error {
	ev, err := us.Cursor().Advance()
	if err != nil {
		return err
	}
	if ev.Kind != infoset.StartArray || ev.Node.Name != a.rd.Name {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), ev.Node.Path(),
			"expected array %q, infoset has %s %q", a.rd.Name, ev.Kind, ev.Node.Name)
	}

	us.EnterArray()
	us.EnterChildren()
	us.PushOccursBound(unknownBound)

	uerr := a.unparseMembers(us, ev.Node)

	if e := us.PopOccursBound(); uerr == nil {
		uerr = e
	}
	if e := us.ExitChildren(); uerr == nil {
		uerr = e
	}
	if e := us.ExitArray(); uerr == nil {
		uerr = e
	}
	if uerr != nil {
		return uerr
	}

	end, err := us.Cursor().Advance()
	if err != nil {
		return err
	}
	if end.Kind != infoset.EndArray {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), end.Node.Path(),
			"expected end of array %q, infoset has %s", a.rd.Name, end.Kind)
	}
	return nil
}

func (a *Array) unparseMembers(us *state.UState, arrayNode *infoset.Node) error {
	bound, err := a.resolveBound(&us.Context, us.Root())
	if err != nil {
		return err
	}
	var count int64
	for {
		// Lookahead only: an end-array event is recognized without
		// consuming it, so the enclosing Unparse sees it intact.
		next, err := us.Cursor().Peek()
		if err != nil {
			return err
		}
		if next.Kind == infoset.EndArray {
			break
		}
		if count >= bound {
			return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), arrayNode.Path(),
				"array %q has more than %d occurrences", a.rd.Name, bound)
		}
		if err := a.member.Unparse(us); err != nil {
			return err
		}
		us.IncrementArrayPos()
		count++
	}
	if a.rd.OccursKind == schema.OccursFixed && count != int64(a.rd.OccursCount) {
		if err := us.RecordValidation(errors.NewDiagnosticf(errors.ErrValidation, arrayNode.Path(),
			"array %q has %d occurrences, declared %d", a.rd.Name, count, a.rd.OccursCount)); err != nil {
			return err
		}
	}
	return nil
}
