package combinator

import (
	"github.com/jacoelho/dfdl/infoset"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
)

// VariableScope is the begin/end bracket pair for a term's newly-declared
// runtime variables, fused into one node so the end bracket runs on every
// exit path. Included only when the term declares at least one variable;
// terms without variables get no bracket nodes at all.
type VariableScope struct {
	base
	body Node
}

// NewVariableScope wraps body in the scope brackets for rd.
func NewVariableScope(rd *runtime.TermRuntimeData, body Node) *VariableScope {
	return &VariableScope{base: base{rd: rd}, body: body}
}

// Kind implements Node.
func (v *VariableScope) Kind() string { return "variable-scope" }

// Children implements Node.
func (v *VariableScope) Children() []Node { return []Node{v.body} }

// instances evaluates declared defaults against the current tree root.
// A default that does not yet resolve leaves the variable unbound.
func (v *VariableScope) instances(root *infoset.Node) []state.VariableInstance {
	out := make([]state.VariableInstance, 0, len(v.rd.Variables))
	for _, decl := range v.rd.Variables {
		inst := state.VariableInstance{Name: decl.Name}
		if decl.Default != nil && root != nil {
			if val, resolved, err := decl.Default.EvaluateNumber(root); err == nil && resolved {
				inst.Value = val
				inst.HasValue = true
			}
		}
		out = append(out, inst)
	}
	return out
}

// Parse implements Node.
func (v *VariableScope) Parse(ps *state.PState) error {
	ps.PushVariableScope(v.instances(ps.Root()))
	err := v.body.Parse(ps)
	if e := ps.PopVariableScope(); err == nil {
		err = e
	}
	return err
}

// Unparse implements Node.
func (v *VariableScope) Unparse(us *state.UState) error {
	us.PushVariableScope(v.instances(us.Root()))
	err := v.body.Unparse(us)
	if e := us.PopVariableScope(); err == nil {
		err = e
	}
	return err
}
