package combinator

import (
	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// Choice tries alternatives in compiled order. Parsing backtracks the
// stream position after a failed alternative; unparsing selects the
// branch matching the next infoset event.
type Choice struct {
	base
	alternatives []Node
}

// NewChoice builds a choice combinator.
func NewChoice(rd *runtime.TermRuntimeData, alternatives []Node) *Choice {
	return &Choice{base: base{rd: rd}, alternatives: alternatives}
}

// Kind implements Node.
func (c *Choice) Kind() string { return "choice" }

// Children implements Node.
func (c *Choice) Children() []Node { return c.alternatives }

// Parse implements Node.
func (c *Choice) Parse(ps *state.PState) error {
	var lastErr error
	for _, alt := range c.alternatives {
		mark := ps.Mark()
		err := alt.Parse(ps)
		if err == nil {
			return nil
		}
		lastErr = err
		if resetErr := ps.Reset(mark); resetErr != nil {
			return resetErr
		}
	}
	return errors.NewProcessing(errors.ErrProcessing, ps.Reader.BitPos(), "",
		"no choice alternative matched (last: %v)", lastErr)
}

// Unparse implements Node. The next start event's node name selects the
// branch; lookahead only, the event is consumed by the branch itself.
func (c *Choice) Unparse(us *state.UState) error {
	ev, err := us.Cursor().Peek()
	if err != nil {
		return err
	}
	if ev.Node == nil {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), "", "choice: event without node")
	}
	for _, alt := range c.alternatives {
		rd := alt.RuntimeData()
		if rd != nil && rd.Name == ev.Node.Name {
			return alt.Unparse(us)
		}
	}
	return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), ev.Node.Path(),
		"no choice branch accepts element %q", ev.Node.Name)
}
