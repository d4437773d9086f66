// Package dfdl compiles declarative data-format descriptions into
// executable combinator trees and runs parse (bytes to infoset) and
// unparse (infoset to bytes) traversals over them.
//
// A format description arrives as a resolved schema.Term tree; schema
// document parsing is an external concern. Compile it once through a
// Compiler, check the resulting ProcessorFactory for errors, and obtain a
// DataProcessor: the processor is immutable and safe for concurrent use,
// with each Parse or Unparse call running on its own execution context.
package dfdl

// RootSpec names the distinguished root element of a compiled format:
// explicit name and namespace, or the schema default when zero.
type RootSpec struct {
	Name      string
	Namespace string
}

// IsZero reports whether root selection is left to the schema.
func (r RootSpec) IsZero() bool { return r.Name == "" && r.Namespace == "" }
