package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a diagnostic category or a specific failure condition.
type Code string

const (
	// ErrSchemaDefinition indicates an invalid or contradictory property
	// combination discovered while building descriptors or the combinator tree.
	ErrSchemaDefinition Code = "schema-definition"
	// ErrExpressionCompile indicates an expression-valued property failed to compile.
	ErrExpressionCompile Code = "schema-definition.expression"
	// ErrProcessing indicates malformed data fatal to the current run.
	ErrProcessing Code = "processing"
	// ErrStreamExhausted indicates the data or event stream ended while more was required.
	ErrStreamExhausted Code = "processing.stream-exhausted"
	// ErrDelimiterMismatch indicates expected delimiter text was not found.
	ErrDelimiterMismatch Code = "processing.delimiter-mismatch"
	// ErrDeferredUnresolved indicates deferred values could not be resolved
	// after the traversal completed.
	ErrDeferredUnresolved Code = "processing.deferred-unresolved"
	// ErrValidation indicates data violates a declared constraint; non-fatal by default.
	ErrValidation Code = "validation"
	// ErrUsage indicates a programmer error, not a data error.
	ErrUsage Code = "usage"
	// ErrUnsupportedTarget indicates an unrecognized code-generation target key.
	ErrUnsupportedTarget Code = "usage.unsupported-target"
	// ErrDeferNonScalar indicates a structural node was registered for deferred evaluation.
	ErrDeferNonScalar Code = "usage.defer-non-scalar"
	// ErrFactoryInError indicates a processor was requested from a factory in error state.
	ErrFactoryInError Code = "usage.factory-in-error"
	// ErrReloadCorrupt indicates a saved processor archive could not be decompressed.
	ErrReloadCorrupt Code = "reload.corrupt"
	// ErrReloadInvalid indicates a decompressible archive with invalid structure.
	ErrReloadInvalid Code = "reload.invalid"
	// ErrReloadUnknownKind indicates an archive referencing combinator kinds
	// not registered in the current runtime.
	ErrReloadUnknownKind Code = "reload.unknown-kind"
	// ErrUDFFatal indicates a user-defined function failed fatally,
	// aborting the enclosing run.
	ErrUDFFatal Code = "udf.fatal"
)

// Diagnostic describes one schema-definition, processing, or validation
// finding with optional location context.
type Diagnostic struct {
	Code    string
	Message string
	Path    string
	BitPos  int64
}

// DiagnosticList is an error that wraps one or more diagnostics.
//
// Ordering is most-recent-first: accumulation prepends, so index 0 is the
// newest finding. This is observable API behavior; use Chronological for
// oldest-first order.
type DiagnosticList []Diagnostic

// Error returns a compact summary of the diagnostics.
func (l DiagnosticList) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Chronological returns a copy of the list in oldest-first order.
func (l DiagnosticList) Chronological() []Diagnostic {
	out := make([]Diagnostic, len(l))
	for i, d := range l {
		out[len(l)-1-i] = d
	}
	return out
}

// Error formats the diagnostic for display, including code and context.
func (d *Diagnostic) Error() string {
	if d == nil {
		return "diagnostic <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", d.Code, d.Message))
	if d.Path != "" {
		b.WriteString(fmt.Sprintf(" at %s", d.Path))
	}
	if d.BitPos > 0 {
		b.WriteString(fmt.Sprintf(" (bit %d)", d.BitPos))
	}
	return b.String()
}

// NewDiagnostic builds a Diagnostic with a code, message, and optional path.
func NewDiagnostic(code Code, msg, path string) Diagnostic {
	return Diagnostic{Code: string(code), Message: msg, Path: path}
}

// NewDiagnosticf formats a message and builds a Diagnostic.
func NewDiagnosticf(code Code, path, format string, args ...any) Diagnostic {
	return NewDiagnostic(code, fmt.Sprintf(format, args...), path)
}

// AsDiagnostics extracts diagnostics from an error returned by engine helpers.
func AsDiagnostics(err error) ([]Diagnostic, bool) {
	list, ok := asDiagnosticList(err)
	if !ok {
		return nil, false
	}
	return []Diagnostic(list), true
}

func asDiagnosticList(err error) (DiagnosticList, bool) {
	if err == nil {
		return nil, false
	}
	var list DiagnosticList
	if errors.As(err, &list) {
		return list, true
	}

	var listPtr *DiagnosticList
	if errors.As(err, &listPtr) && listPtr != nil {
		return *listPtr, true
	}

	return nil, false
}
