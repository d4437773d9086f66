package combinator

import (
	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// BinaryInteger is the value body of a fixed-width binary integer element.
type BinaryInteger struct {
	base
}

// NewBinaryInteger builds the body combinator for rd.
func NewBinaryInteger(rd *runtime.TermRuntimeData) *BinaryInteger {
	return &BinaryInteger{base: base{rd: rd}}
}

// Kind implements Node.
func (b *BinaryInteger) Kind() string { return "binary-integer" }

// Children implements Node.
func (b *BinaryInteger) Children() []Node { return nil }

// Parse implements Node.
func (b *BinaryInteger) Parse(ps *state.PState) error {
	raw, err := ps.Reader.ReadBits(b.rd.LengthBits, b.rd.ByteOrder)
	if err != nil {
		return err
	}
	v := int64(raw)
	node := ps.CurrentNode()
	node.SetValue(v)
	return b.checkRange(&ps.Context, v, node.Path(), ps.Reader.BitPos())
}

// Unparse implements Node.
func (b *BinaryInteger) Unparse(us *state.UState) error {
	node := us.Cursor().CurrentNode()
	raw, ok := node.Value()
	if !ok {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), node.Path(),
			"element %q has no resolved value", b.rd.Name)
	}
	v, err := asInt64(raw, node.Path(), us.Writer.BitPos())
	if err != nil {
		return err
	}
	if err := b.checkRange(&us.Context, v, node.Path(), us.Writer.BitPos()); err != nil {
		return err
	}
	return us.Writer.WriteBits(uint64(v), b.rd.LengthBits, b.rd.ByteOrder)
}

// checkRange records a validation diagnostic for out-of-range values.
// Non-fatal unless the run is configured otherwise.
func (b *BinaryInteger) checkRange(ctx *state.Context, v int64, path string, bitPos int64) error {
	if b.rd.MinValue != nil && v < *b.rd.MinValue {
		d := errors.NewDiagnosticf(errors.ErrValidation, path,
			"value %d of %q is below minimum %d", v, b.rd.Name, *b.rd.MinValue)
		d.BitPos = bitPos
		return ctx.RecordValidation(d)
	}
	if b.rd.MaxValue != nil && v > *b.rd.MaxValue {
		d := errors.NewDiagnosticf(errors.ErrValidation, path,
			"value %d of %q is above maximum %d", v, b.rd.Name, *b.rd.MaxValue)
		d.BitPos = bitPos
		return ctx.RecordValidation(d)
	}
	return nil
}

func asInt64(v any, path string, bitPos int64) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	default:
		return 0, errors.NewProcessing(errors.ErrProcessing, bitPos, path,
			"binary integer element holds %T, want integer", v)
	}
}
