// Package state holds the mutable traversal contexts threaded through one
// parse or unparse run. A context is created fresh per invocation,
// discarded afterwards, and never shared across goroutines; the compiled
// combinator tree it drives is immutable and freely shared.
package state

import "github.com/jacoelho/dfdl/errors"

// Mode selects how much of the data tree the traversal retains.
type Mode uint8

const (
	// Streaming consumes or produces each infoset event and may then
	// discard it. The default.
	Streaming Mode = iota
	// Accumulating retains the data tree so a later forward reference
	// can be resolved before the run completes.
	Accumulating
)

// DelimiterScope is one delimiter-context record. The top of the scope
// stack is the only scope visible to matching operations.
type DelimiterScope struct {
	Initiator  string
	Terminator string
	Separator  string
}

// VariableInstance is one runtime variable binding introduced by a
// scope-bracket combinator.
type VariableInstance struct {
	Name     string
	Value    int64
	HasValue bool
}

// StackDepths snapshots the depth of every context stack, for the
// stack-balance contract: post-run depths must equal pre-run depths.
type StackDepths struct {
	Array      int
	Group      int
	Child      int
	Occurs     int
	Delimiters int
	Variables  int
}

// Context is the state shared by both traversal directions: positional
// counters, occurs bounds, delimiter scopes, diagnostics, and run flags.
type Context struct {
	arrayPos counterStack
	groupPos counterStack
	childPos counterStack

	occursBounds boundStack

	delimiters []DelimiterScope

	variables [][]VariableInstance

	diags errors.DiagnosticList

	mode            Mode
	retain          bool
	fatalValidation bool
}

// ArrayPos returns the 1-based position within the innermost array.
func (c *Context) ArrayPos() int64 { return c.arrayPos.top() }

// GroupPos returns the 1-based position within the innermost group.
func (c *Context) GroupPos() int64 { return c.groupPos.top() }

// ChildPos returns the 1-based child position within the innermost element.
func (c *Context) ChildPos() int64 { return c.childPos.top() }

// EnterArray opens a new array scope with its counter at 1.
func (c *Context) EnterArray() { c.arrayPos.push() }

// ExitArray closes the innermost array scope and advances the parent's
// array counter.
func (c *Context) ExitArray() error {
	if err := c.arrayPos.pop("array"); err != nil {
		return err
	}
	c.arrayPos.increment()
	return nil
}

// IncrementArrayPos advances to the next array element.
func (c *Context) IncrementArrayPos() { c.arrayPos.increment() }

// EnterGroup opens a new group scope with its counter at 1.
func (c *Context) EnterGroup() { c.groupPos.push() }

// ExitGroup closes the innermost group scope and advances the parent's
// group counter.
func (c *Context) ExitGroup() error {
	if err := c.groupPos.pop("group"); err != nil {
		return err
	}
	c.groupPos.increment()
	return nil
}

// IncrementGroupPos advances to the next group member.
func (c *Context) IncrementGroupPos() { c.groupPos.increment() }

// EnterChildren opens a new child scope with its counter at 1.
func (c *Context) EnterChildren() { c.childPos.push() }

// ExitChildren closes the innermost child scope and advances the parent's
// child counter: the completed element counts as one consumed child.
func (c *Context) ExitChildren() error {
	if err := c.childPos.pop("child"); err != nil {
		return err
	}
	c.childPos.increment()
	return nil
}

// IncrementChildPos advances to the next child.
func (c *Context) IncrementChildPos() { c.childPos.increment() }

// PushOccursBound enters a new array scope's bound.
func (c *Context) PushOccursBound(bound int64) { c.occursBounds.push(bound) }

// PopOccursBound leaves the innermost array scope's bound.
func (c *Context) PopOccursBound() error { return c.occursBounds.pop() }

// ReplaceOccursBound refines the innermost bound in place, used when the
// bound becomes known dynamically. Calling it outside an array scope is a
// usage error, never a silent push.
func (c *Context) ReplaceOccursBound(bound int64) error {
	return c.occursBounds.replaceTop(bound)
}

// OccursBound returns the innermost known bound.
func (c *Context) OccursBound() (int64, error) { return c.occursBounds.top() }

// PushDelimiterScope makes s the local delimiter scope.
func (c *Context) PushDelimiterScope(s DelimiterScope) {
	c.delimiters = append(c.delimiters, s)
}

// PopDelimiterScope restores the enclosing delimiter scope.
func (c *Context) PopDelimiterScope() error {
	if len(c.delimiters) == 0 {
		return errors.NewUsage(errors.ErrUsage, "delimiter scope stack underflow")
	}
	c.delimiters = c.delimiters[:len(c.delimiters)-1]
	return nil
}

// LocalDelimiters returns the innermost delimiter scope, the only one
// visible to matching operations.
func (c *Context) LocalDelimiters() (DelimiterScope, bool) {
	if len(c.delimiters) == 0 {
		return DelimiterScope{}, false
	}
	return c.delimiters[len(c.delimiters)-1], true
}

// PushVariableScope introduces the variable instances declared by a term.
func (c *Context) PushVariableScope(vars []VariableInstance) {
	c.variables = append(c.variables, vars)
}

// PopVariableScope removes the innermost variable instances.
func (c *Context) PopVariableScope() error {
	if len(c.variables) == 0 {
		return errors.NewUsage(errors.ErrUsage, "variable scope stack underflow")
	}
	c.variables = c.variables[:len(c.variables)-1]
	return nil
}

// LookupVariable finds the innermost binding of name.
func (c *Context) LookupVariable(name string) (VariableInstance, bool) {
	for i := len(c.variables) - 1; i >= 0; i-- {
		for _, v := range c.variables[i] {
			if v.Name == name {
				return v, true
			}
		}
	}
	return VariableInstance{}, false
}

// RecordValidation prepends a validation diagnostic: the list is
// most-recent-first (see errors.DiagnosticList). The returned error is
// non-nil only when the run is configured with fatal validation.
func (c *Context) RecordValidation(d errors.Diagnostic) error {
	c.diags = append(errors.DiagnosticList{d}, c.diags...)
	if c.fatalValidation {
		return errors.NewProcessing(errors.ErrValidation, d.BitPos, d.Path, "fatal validation: %s", d.Message)
	}
	return nil
}

// Diagnostics returns the accumulated diagnostics, most recent first.
func (c *Context) Diagnostics() errors.DiagnosticList { return c.diags }

// DiagnosticCount returns the number of accumulated diagnostics.
func (c *Context) DiagnosticCount() int { return len(c.diags) }

// Mode returns the current traversal mode.
func (c *Context) Mode() Mode { return c.mode }

// SetAccumulating switches the run to Accumulating mode. There is no way
// back within a run: once a deferred value exists the tree must stay
// resident until it resolves.
func (c *Context) SetAccumulating() { c.mode = Accumulating }

// Retain reports whether the caller needs the data tree after the run.
func (c *Context) Retain() bool { return c.retain }

// SetRetain sets the retention flag. Set once per run, before traversal.
func (c *Context) SetRetain(v bool) { c.retain = v }

// SetFatalValidation makes validation failures abort the run.
func (c *Context) SetFatalValidation(v bool) { c.fatalValidation = v }

// Depths snapshots all stack depths.
func (c *Context) Depths() StackDepths {
	return StackDepths{
		Array:      c.arrayPos.depth(),
		Group:      c.groupPos.depth(),
		Child:      c.childPos.depth(),
		Occurs:     c.occursBounds.depth(),
		Delimiters: len(c.delimiters),
		Variables:  len(c.variables),
	}
}
