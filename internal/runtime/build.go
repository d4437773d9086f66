package runtime

import (
	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/bitio"
	"github.com/jacoelho/dfdl/internal/expr"
	"github.com/jacoelho/dfdl/schema"
)

// Descriptors is the compiled descriptor set for one schema. Immutable
// after Build.
type Descriptors struct {
	Root    *TermRuntimeData
	perTerm map[*schema.Term]*TermRuntimeData
}

// ForTerm returns the descriptor compiled for a term, or nil.
func (d *Descriptors) ForTerm(t *schema.Term) *TermRuntimeData {
	return d.perTerm[t]
}

// builder accumulates schema-definition diagnostics while walking the
// term tree. Multiple errors are collected before reporting, not stopped
// at the first.
type builder struct {
	perTerm map[*schema.Term]*TermRuntimeData
	diags   []errors.Diagnostic
}

// Build compiles the term tree into descriptors. The returned diagnostics
// are schema-definition errors in discovery order; a non-empty list means
// the descriptor set must not be executed.
func Build(root *schema.Term) (*Descriptors, []errors.Diagnostic) {
	b := &builder{perTerm: make(map[*schema.Term]*TermRuntimeData)}
	rd := b.buildTerm(root, "/"+root.Name)
	return &Descriptors{Root: rd, perTerm: b.perTerm}, b.diags
}

func (b *builder) errorf(path string, format string, args ...any) {
	b.diags = append(b.diags, errors.NewDiagnosticf(errors.ErrSchemaDefinition, path, format, args...))
}

func (b *builder) buildTerm(t *schema.Term, path string) *TermRuntimeData {
	p := t.Props
	rd := &TermRuntimeData{
		Name:          t.Name,
		Namespace:     t.Namespace,
		Kind:          t.Kind,
		Encoding:      p.Encoding,
		AlignmentBits: p.AlignmentBits,
		Initiator:     p.Initiator,
		Terminator:    p.Terminator,
		Separator:     p.Separator,
		LengthBits:    p.LengthBits,
		OccursKind:    p.Occurs.Kind,
		OccursCount:   p.Occurs.Count,
		MinValue:      p.MinValue,
		MaxValue:      p.MaxValue,
		term:          t,
	}
	if p.ByteOrder == schema.LittleEndian {
		rd.ByteOrder = bitio.LittleEndian
	}

	b.checkTerm(t, rd, path)

	rd.OccursExpr = b.compile(p.Occurs.Expr, path)
	rd.OutputValueCalc = b.compile(p.OutputValueCalc, path)
	for _, v := range p.Variables {
		rd.Variables = append(rd.Variables, VariableRuntimeData{
			Name:    v.Name,
			Default: b.compile(v.DefaultExpr, path),
		})
	}

	for _, c := range t.Children() {
		childPath := path
		if c.Name != "" {
			childPath = path + "/" + c.Name
		}
		rd.Children = append(rd.Children, b.buildTerm(c, childPath))
	}

	b.perTerm[t] = rd
	return rd
}

func (b *builder) compile(src, path string) *expr.Compiled {
	if src == "" {
		return nil
	}
	c, err := expr.Compile(src)
	if err != nil {
		b.diags = append(b.diags, errors.NewDiagnosticf(errors.ErrExpressionCompile, path, "%v", err))
		return nil
	}
	return c
}

func (b *builder) checkTerm(t *schema.Term, rd *TermRuntimeData, path string) {
	p := t.Props

	switch t.Kind {
	case schema.ElementTerm:
		if len(t.Children()) == 0 && p.LengthBits <= 0 {
			b.errorf(path, "simple element requires a positive fixed length, got %d bits", p.LengthBits)
		}
		if p.ByteOrder == schema.LittleEndian && p.LengthBits%8 != 0 {
			b.errorf(path, "little-endian element length %d bits is not byte-sized", p.LengthBits)
		}
		if p.Encoding != "" && p.LengthBits%8 != 0 {
			b.errorf(path, "textual element length %d bits is not byte-sized", p.LengthBits)
		}
	case schema.SequenceTerm, schema.ChoiceTerm:
		if p.Occurs.Kind != schema.OccursScalar {
			b.errorf(path, "occurrence properties apply to elements, not %s groups", t.Kind)
		}
		if p.OutputValueCalc != "" {
			b.errorf(path, "output value calculation applies to simple elements, not %s groups", t.Kind)
		}
	}

	switch p.Occurs.Kind {
	case schema.OccursFixed:
		if p.Occurs.Count < 1 {
			b.errorf(path, "fixed occurs count must be at least 1, got %d", p.Occurs.Count)
		}
	case schema.OccursExpression:
		if p.Occurs.Expr == "" {
			b.errorf(path, "expression occurs kind requires an expression")
		}
	}

	if p.Encoding != "" && !knownEncoding(p.Encoding) {
		b.errorf(path, "unsupported encoding %q", p.Encoding)
	}

	if p.MinValue != nil && p.MaxValue != nil && *p.MinValue > *p.MaxValue {
		b.errorf(path, "value range [%d, %d] is empty", *p.MinValue, *p.MaxValue)
	}

	if p.OutputValueCalc != "" && len(t.Children()) > 0 {
		b.errorf(path, "output value calculation on a complex element")
	}
}

func knownEncoding(name string) bool {
	switch name {
	case "utf-8", "us-ascii", "ascii", "iso-8859-1":
		return true
	default:
		return false
	}
}
