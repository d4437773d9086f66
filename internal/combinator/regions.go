package combinator

import (
	"bytes"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// MandatoryAlignment aligns the stream cursor to the term's mandatory
// alignment. Included only for terms with a resolved encoding or an
// explicit alignment property.
type MandatoryAlignment struct {
	base
}

// NewMandatoryAlignment builds the alignment combinator for rd.
func NewMandatoryAlignment(rd *runtime.TermRuntimeData) *MandatoryAlignment {
	return &MandatoryAlignment{base: base{rd: rd}}
}

// Kind implements Node.
func (m *MandatoryAlignment) Kind() string { return "mandatory-alignment" }

// Children implements Node.
func (m *MandatoryAlignment) Children() []Node { return nil }

// Parse implements Node.
func (m *MandatoryAlignment) Parse(ps *state.PState) error {
	return ps.Reader.AlignTo(m.rd.MandatoryAlignment())
}

// Unparse implements Node.
func (m *MandatoryAlignment) Unparse(us *state.UState) error {
	return us.Writer.AlignTo(m.rd.MandatoryAlignment())
}

// DelimiterTextAlignment aligns the cursor for delimiter matching, a
// precondition independent of the term's general text alignment.
// Included only for terms that have delimiters.
type DelimiterTextAlignment struct {
	base
}

// NewDelimiterTextAlignment builds the delimiter alignment combinator for rd.
func NewDelimiterTextAlignment(rd *runtime.TermRuntimeData) *DelimiterTextAlignment {
	return &DelimiterTextAlignment{base: base{rd: rd}}
}

// Kind implements Node.
func (d *DelimiterTextAlignment) Kind() string { return "delimiter-text-alignment" }

// Children implements Node.
func (d *DelimiterTextAlignment) Children() []Node { return nil }

// Parse implements Node.
func (d *DelimiterTextAlignment) Parse(ps *state.PState) error {
	return ps.Reader.AlignTo(8)
}

// Unparse implements Node.
func (d *DelimiterTextAlignment) Unparse(us *state.UState) error {
	return us.Writer.AlignTo(8)
}

// delimiterKind selects which local delimiter a region matches.
type delimiterKind uint8

const (
	initiatorDelimiter delimiterKind = iota
	terminatorDelimiter
	separatorDelimiter
)

func (k delimiterKind) name() string {
	switch k {
	case initiatorDelimiter:
		return "initiator"
	case terminatorDelimiter:
		return "terminator"
	default:
		return "separator"
	}
}

// DelimiterRegion matches (parse) or emits (unparse) one local delimiter.
// Only the innermost delimiter scope is visible to it.
type DelimiterRegion struct {
	base
	kind delimiterKind
}

// NewInitiatorRegion builds the initiator region for rd.
func NewInitiatorRegion(rd *runtime.TermRuntimeData) *DelimiterRegion {
	return &DelimiterRegion{base: base{rd: rd}, kind: initiatorDelimiter}
}

// NewTerminatorRegion builds the terminator region for rd.
func NewTerminatorRegion(rd *runtime.TermRuntimeData) *DelimiterRegion {
	return &DelimiterRegion{base: base{rd: rd}, kind: terminatorDelimiter}
}

// NewSeparatorRegion builds the separator region for rd.
func NewSeparatorRegion(rd *runtime.TermRuntimeData) *DelimiterRegion {
	return &DelimiterRegion{base: base{rd: rd}, kind: separatorDelimiter}
}

// Kind implements Node.
func (d *DelimiterRegion) Kind() string { return d.kind.name() + "-region" }

// Children implements Node.
func (d *DelimiterRegion) Children() []Node { return nil }

func (d *DelimiterRegion) literal(ctx *state.Context) (string, error) {
	scope, ok := ctx.LocalDelimiters()
	if !ok {
		return "", errors.NewUsage(errors.ErrUsage, "%s region outside any delimiter scope", d.kind.name())
	}
	switch d.kind {
	case initiatorDelimiter:
		return scope.Initiator, nil
	case terminatorDelimiter:
		return scope.Terminator, nil
	default:
		return scope.Separator, nil
	}
}

// Parse implements Node.
func (d *DelimiterRegion) Parse(ps *state.PState) error {
	lit, err := d.literal(&ps.Context)
	if err != nil {
		return err
	}
	if lit == "" {
		return nil
	}
	want := []byte(lit)
	got, err := ps.Reader.PeekBytes(len(want))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return errors.NewProcessing(errors.ErrDelimiterMismatch, ps.Reader.BitPos(), "",
			"expected %s %q, found %q", d.kind.name(), lit, string(got))
	}
	_, err = ps.Reader.ReadBytes(len(want))
	return err
}

// Unparse implements Node.
func (d *DelimiterRegion) Unparse(us *state.UState) error {
	lit, err := d.literal(&us.Context)
	if err != nil {
		return err
	}
	if lit == "" {
		return nil
	}
	return us.Writer.WriteBytes([]byte(lit))
}
