// Package combinator defines the executable nodes of a compiled format.
// Nodes are built once by the grammar compiler, hold no per-run state,
// and are driven by the execution contexts: one tree may serve many
// concurrent runs because all mutable state lives in the contexts.
package combinator

import (
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// Node is one executable unit of the compiled tree. Parse consumes the
// bit stream and builds the infoset; Unparse consumes the infoset event
// stream and emits bits.
type Node interface {
	// Kind names the combinator kind, stable across releases: persisted
	// artifacts record the kinds they require.
	Kind() string
	RuntimeData() *runtime.TermRuntimeData
	Children() []Node
	Parse(ps *state.PState) error
	Unparse(us *state.UState) error
}

// base carries the descriptor reference shared by all node types.
type base struct {
	rd *runtime.TermRuntimeData
}

// RuntimeData returns the descriptor this node was compiled for.
func (b base) RuntimeData() *runtime.TermRuntimeData { return b.rd }

func delimiterScope(rd *runtime.TermRuntimeData) state.DelimiterScope {
	return state.DelimiterScope{
		Initiator:  rd.Initiator,
		Terminator: rd.Terminator,
		Separator:  rd.Separator,
	}
}

// Walk visits the tree depth-first, root first.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// Kinds returns the sorted-unique kind names reachable from n.
func Kinds(n Node) []string {
	seen := map[string]bool{}
	var out []string
	Walk(n, func(c Node) {
		if !seen[c.Kind()] {
			seen[c.Kind()] = true
			out = append(out, c.Kind())
		}
	})
	return out
}
