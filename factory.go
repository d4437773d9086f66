package dfdl

import (
	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/combinator"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/schema"
)

// ProcessorFactory is the outcome of one compilation: either a compiled
// combinator tree or a collection of schema-definition diagnostics.
// Callers must check IsError before requesting a processor or generator;
// doing so from an error state is a usage-contract violation, never a
// silent empty result.
type ProcessorFactory struct {
	rootSpec     RootSpec
	externalVars map[string]int64

	schemaRoot *schema.Term
	descs      *runtime.Descriptors
	tree       combinator.Node

	// diags are compile-time diagnostics in discovery order: all
	// schema-definition errors are collected before reporting, not
	// stopped at the first.
	diags []errors.Diagnostic
}

// IsError reports whether compilation failed.
func (f *ProcessorFactory) IsError() bool {
	return f == nil || f.tree == nil || len(f.diags) > 0
}

// Diagnostics returns the compile-time diagnostics in discovery order.
func (f *ProcessorFactory) Diagnostics() []errors.Diagnostic {
	if f == nil {
		return nil
	}
	return f.diags
}

// RootSpec returns the resolved root specification.
func (f *ProcessorFactory) RootSpec() RootSpec {
	if f == nil {
		return RootSpec{}
	}
	return f.rootSpec
}

// DataProcessor produces a runnable processor from a successful
// compilation. The processor runs many independent parse/unparse calls
// against the same compiled tree.
func (f *ProcessorFactory) DataProcessor() (*DataProcessor, error) {
	if f.IsError() {
		return nil, errors.NewUsage(errors.ErrFactoryInError,
			"factory is in error state (%d diagnostics); check IsError before requesting a processor", len(f.Diagnostics()))
	}
	return &DataProcessor{
		rootSpec:     f.rootSpec,
		schemaRoot:   f.schemaRoot,
		descs:        f.descs,
		tree:         f.tree,
		externalVars: f.externalVars,
	}, nil
}
