package dfdl

import (
	"sort"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/infoset"
	"github.com/jacoelho/dfdl/internal/combinator"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
	"github.com/jacoelho/dfdl/schema"
)

// DataProcessor runs parse and unparse calls against one compiled
// combinator tree. The tree and its descriptors are immutable, so a
// processor is safe for concurrent use: every call creates a fresh
// execution context and all mutable state lives there.
type DataProcessor struct {
	rootSpec     RootSpec
	schemaRoot   *schema.Term
	descs        *runtime.Descriptors
	tree         combinator.Node
	externalVars map[string]int64
}

// ParseResult carries one parse run's outcome: the produced infoset,
// diagnostics (most recent first), the final bit position, and the fatal
// error if the run aborted.
type ParseResult struct {
	Infoset     *infoset.Node
	Diagnostics errors.DiagnosticList
	BitPos      int64
	Err         error
}

// UnparseResult carries one unparse run's outcome.
type UnparseResult struct {
	Data        []byte
	Diagnostics errors.DiagnosticList
	BitPos      int64
	Err         error
}

// Parse consumes data and builds an infoset.
func (p *DataProcessor) Parse(data []byte, opts ...RunOption) *ParseResult {
	cfg := applyRunOptions(opts)
	ps := state.NewPState(data)
	ps.SetRetain(cfg.retain)
	ps.SetFatalValidation(cfg.fatalValidation)

	scoped := p.pushExternalVars(&ps.Context)
	err := p.tree.Parse(ps)
	if scoped {
		if e := ps.PopVariableScope(); err == nil {
			err = e
		}
	}

	return &ParseResult{
		Infoset:     ps.Root(),
		Diagnostics: ps.Diagnostics(),
		BitPos:      ps.Reader.BitPos(),
		Err:         err,
	}
}

// Unparse consumes the data tree rooted at root and emits its byte
// representation. Deferred values resolve in a dedicated pass after the
// forward traversal; the buffer is patched in place.
func (p *DataProcessor) Unparse(root *infoset.Node, opts ...RunOption) *UnparseResult {
	cfg := applyRunOptions(opts)
	us := state.NewUState(root)
	us.SetRetain(cfg.retain)
	us.SetFatalValidation(cfg.fatalValidation)

	scoped := p.pushExternalVars(&us.Context)
	err := p.tree.Unparse(us)
	if err == nil {
		err = us.ResolveDeferred()
	}
	if scoped {
		if e := us.PopVariableScope(); err == nil {
			err = e
		}
	}

	res := &UnparseResult{
		Diagnostics: us.Diagnostics(),
		BitPos:      us.Writer.BitPos(),
		Err:         err,
	}
	if err == nil {
		res.Data = us.Writer.Bytes()
	}
	return res
}

// RootSpec returns the processor's resolved root specification.
func (p *DataProcessor) RootSpec() RootSpec { return p.rootSpec }

// pushExternalVars installs the compile-time variable bindings as the
// outermost scope. Deterministic order so diagnostics are reproducible.
func (p *DataProcessor) pushExternalVars(ctx *state.Context) bool {
	if len(p.externalVars) == 0 {
		return false
	}
	names := make([]string, 0, len(p.externalVars))
	for name := range p.externalVars {
		names = append(names, name)
	}
	sort.Strings(names)
	vars := make([]state.VariableInstance, 0, len(names))
	for _, name := range names {
		vars = append(vars, state.VariableInstance{
			Name:     name,
			Value:    p.externalVars[name],
			HasValue: true,
		})
	}
	ctx.PushVariableScope(vars)
	return true
}
