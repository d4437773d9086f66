package combinator

import (
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// DeferredValue is the unparse body of an element whose value is computed
// from other parts of the infoset. When the computation already resolves
// against the tree seen so far, the value is written immediately; a
// forward reference reserves the element's region, registers the node in
// the deferred registry, and switches the run to Accumulating mode.
//
// The parse direction reads the representation like any binary integer:
// computed elements are physically present in the data.
type DeferredValue struct {
	base
	parseBody Node
}

// NewDeferredValue builds the deferred body for rd; parseBody handles the
// parse direction.
func NewDeferredValue(rd *runtime.TermRuntimeData, parseBody Node) *DeferredValue {
	return &DeferredValue{base: base{rd: rd}, parseBody: parseBody}
}

// Kind implements Node.
func (d *DeferredValue) Kind() string { return "deferred-value" }

// Children implements Node.
func (d *DeferredValue) Children() []Node { return []Node{d.parseBody} }

// Parse implements Node.
func (d *DeferredValue) Parse(ps *state.PState) error {
	return d.parseBody.Parse(ps)
}

// Unparse implements Node.
func (d *DeferredValue) Unparse(us *state.UState) error {
	node := us.Cursor().CurrentNode()
	v, resolved, err := d.rd.OutputValueCalc.EvaluateNumber(us.Root())
	if err != nil {
		return err
	}
	if resolved {
		node.SetValue(v)
		return us.Writer.WriteBits(uint64(v), d.rd.LengthBits, d.rd.ByteOrder)
	}
	return us.Defer(node, d.rd.OutputValueCalc, d.rd.LengthBits, d.rd.ByteOrder)
}
