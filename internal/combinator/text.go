package combinator

import (
	"strings"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// Text is the value body of a fixed-length textual element. The
// representation occupies LengthBits/8 bytes in the resolved encoding;
// short values are padded with spaces on unparse and trailing pad is
// trimmed on parse.
type Text struct {
	base
}

// NewText builds the body combinator for rd.
func NewText(rd *runtime.TermRuntimeData) *Text {
	return &Text{base: base{rd: rd}}
}

// Kind implements Node.
func (t *Text) Kind() string { return "text" }

// Children implements Node.
func (t *Text) Children() []Node { return nil }

func (t *Text) byteLength() int { return t.rd.LengthBits / 8 }

// Parse implements Node.
func (t *Text) Parse(ps *state.PState) error {
	raw, err := ps.Reader.ReadBytes(t.byteLength())
	if err != nil {
		return err
	}
	ps.CurrentNode().SetValue(strings.TrimRight(string(raw), " "))
	return nil
}

// Unparse implements Node.
func (t *Text) Unparse(us *state.UState) error {
	node := us.Cursor().CurrentNode()
	raw, ok := node.Value()
	if !ok {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), node.Path(),
			"element %q has no resolved value", t.rd.Name)
	}
	s, ok := raw.(string)
	if !ok {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), node.Path(),
			"text element holds %T, want string", raw)
	}
	n := t.byteLength()
	if len(s) > n {
		return errors.NewProcessing(errors.ErrProcessing, us.Writer.BitPos(), node.Path(),
			"value %q longer than fixed length %d", s, n)
	}
	padded := s + strings.Repeat(" ", n-len(s))
	return us.Writer.WriteBytes([]byte(padded))
}
