package errors

import "fmt"

// UsageError reports a programmer error: a violated API contract rather
// than bad data. Callers should not retry; the calling code is wrong.
type UsageError struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e == nil {
		return "usage error <nil>"
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewUsage builds a UsageError with a code and formatted message.
func NewUsage(code Code, format string, args ...any) *UsageError {
	return &UsageError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ProcessingError reports a failure fatal to the current run: stream
// exhaustion, delimiter mismatch, or data not matching declared bounds.
type ProcessingError struct {
	Code    Code
	Message string
	Path    string
	BitPos  int64
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e == nil {
		return "processing error <nil>"
	}
	d := Diagnostic{Code: string(e.Code), Message: e.Message, Path: e.Path, BitPos: e.BitPos}
	return d.Error()
}

// Diagnostic converts the error to its diagnostic form.
func (e *ProcessingError) Diagnostic() Diagnostic {
	return Diagnostic{Code: string(e.Code), Message: e.Message, Path: e.Path, BitPos: e.BitPos}
}

// NewProcessing builds a ProcessingError at a bit position.
func NewProcessing(code Code, bitPos int64, path, format string, args ...any) *ProcessingError {
	return &ProcessingError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		BitPos:  bitPos,
	}
}

// ReloadError reports a failed processor reload, distinguished by cause.
type ReloadError struct {
	Code    Code
	Message string
	// KnownKinds lists the combinator kinds registered in this runtime.
	// Populated only for ErrReloadUnknownKind, to aid diagnosis.
	KnownKinds []string
}

// Error implements the error interface.
func (e *ReloadError) Error() string {
	if e == nil {
		return "reload error <nil>"
	}
	if len(e.KnownKinds) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (known kinds: %v)", e.Code, e.Message, e.KnownKinds)
}

// NewReload builds a ReloadError with a cause code and formatted message.
func NewReload(code Code, format string, args ...any) *ReloadError {
	return &ReloadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// UDFFatalError reports a fatal user-defined-function failure. It aborts
// the enclosing run entirely; non-fatal UDF failures surface as ordinary
// processing errors instead.
type UDFFatalError struct {
	Function string
	Cause    error
}

// Error implements the error interface.
func (e *UDFFatalError) Error() string {
	if e == nil {
		return "udf fatal error <nil>"
	}
	return fmt.Sprintf("[%s] user defined function %s: %v", ErrUDFFatal, e.Function, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *UDFFatalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
