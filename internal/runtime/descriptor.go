// Package runtime holds the immutable, schema-derived descriptors shared
// between compile time and run time. Descriptors are built once per
// compiled schema and are safe for concurrent readers; all per-run
// mutable state lives in the execution contexts.
package runtime

import (
	"github.com/jacoelho/dfdl/internal/bitio"
	"github.com/jacoelho/dfdl/internal/expr"
	"github.com/jacoelho/dfdl/schema"
)

// VariableRuntimeData describes one runtime variable declared by a term.
type VariableRuntimeData struct {
	Name    string
	Default *expr.Compiled
}

// TermRuntimeData is the compiled metadata for one structural term. It is
// shared by every combinator instantiated for the term and never mutated
// after Build returns.
type TermRuntimeData struct {
	Name      string
	Namespace string
	Kind      schema.TermKind

	Encoding      string
	AlignmentBits int64
	Initiator     string
	Terminator    string
	Separator     string

	ByteOrder  bitio.ByteOrder
	LengthBits int

	OccursKind  schema.OccursKind
	OccursCount int
	OccursExpr  *expr.Compiled

	OutputValueCalc *expr.Compiled

	Variables []VariableRuntimeData

	MinValue *int64
	MaxValue *int64

	Children []*TermRuntimeData

	term *schema.Term
}

// Term returns the structural term this descriptor was compiled from.
func (rd *TermRuntimeData) Term() *schema.Term { return rd.term }

// HasEncoding reports whether a character encoding is resolved.
func (rd *TermRuntimeData) HasEncoding() bool { return rd.Encoding != "" }

// HasDelimiters reports whether any delimiter is declared.
func (rd *TermRuntimeData) HasDelimiters() bool {
	return rd.Initiator != "" || rd.Terminator != "" || rd.Separator != ""
}

// HasVariables reports whether the term declares runtime variables.
func (rd *TermRuntimeData) HasVariables() bool { return len(rd.Variables) > 0 }

// MandatoryAlignment returns the alignment requirement in bits: the
// explicit alignment when declared, otherwise the encoding's mandatory
// alignment for textual terms, otherwise zero.
func (rd *TermRuntimeData) MandatoryAlignment() int64 {
	if rd.AlignmentBits > 0 {
		return rd.AlignmentBits
	}
	if rd.HasEncoding() {
		return 8
	}
	return 0
}

// IsArray reports whether the term repeats.
func (rd *TermRuntimeData) IsArray() bool {
	return rd.Kind == schema.ElementTerm && rd.OccursKind != schema.OccursScalar
}

// IsSimple reports whether the term is a scalar element.
func (rd *TermRuntimeData) IsSimple() bool {
	return rd.Kind == schema.ElementTerm && len(rd.Children) == 0
}
