// Package grammar compiles runtime descriptors into combinator trees.
// Which sub-combinators exist for a term depends on the term's resolved
// properties: absent properties elide the corresponding sub-combinator
// entirely, so the hot traversal loop never branches on schema shape.
package grammar

import (
	"fmt"

	"github.com/jacoelho/dfdl/internal/combinator"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/schema"
)

// GrammarContextError reports a compile-time contract violation: a term
// requested a nearest-enclosing-sequence context that does not exist,
// which can only happen at the document root.
type GrammarContextError struct {
	TermName string
}

// Error implements the error interface.
func (e *GrammarContextError) Error() string {
	return fmt.Sprintf("term %q has no enclosing sequence context", e.TermName)
}

// Compiler turns a descriptor set into an executable combinator tree.
// Inclusion decisions are computed once per term and cached; schema
// properties are immutable post-compile so a decision never changes.
type Compiler struct {
	descs *runtime.Descriptors
	grams map[*runtime.TermRuntimeData]*termGram
}

// New returns a compiler over descs.
func New(descs *runtime.Descriptors) *Compiler {
	return &Compiler{
		descs: descs,
		grams: make(map[*runtime.TermRuntimeData]*termGram),
	}
}

// Compile builds the combinator tree for the root descriptor.
func (c *Compiler) Compile() (combinator.Node, error) {
	root, err := c.compileTerm(c.descs.Root)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("root term %q compiles to nothing", c.descs.Root.Name)
	}
	return root, nil
}

func (c *Compiler) compileTerm(rd *runtime.TermRuntimeData) (combinator.Node, error) {
	switch rd.Kind {
	case schema.ElementTerm:
		return c.compileElement(rd)
	case schema.SequenceTerm:
		return c.compileSequence(rd)
	case schema.ChoiceTerm:
		return c.compileChoice(rd)
	default:
		return nil, fmt.Errorf("term %q has unknown kind %d", rd.Name, rd.Kind)
	}
}

// enclosingSequence resolves the nearest enclosing sequence context.
// The root has none; requesting one there is a compile-time contract
// violation surfaced as GrammarContextError.
func (c *Compiler) enclosingSequence(rd *runtime.TermRuntimeData) (*schema.Term, error) {
	seq := rd.Term().NearestEnclosingSequence()
	if seq == nil {
		return nil, &GrammarContextError{TermName: rd.Name}
	}
	return seq, nil
}

func (c *Compiler) compileElement(rd *runtime.TermRuntimeData) (combinator.Node, error) {
	// A separator property on an element resolves against the enclosing
	// sequence's separator policy; it is meaningless at the document root.
	if rd.Separator != "" {
		if _, err := c.enclosingSequence(rd); err != nil {
			return nil, err
		}
	}

	g := c.gram(rd)
	var parts []combinator.Node
	if g.includeMandatoryAlignment() {
		parts = append(parts, combinator.NewMandatoryAlignment(rd))
	}
	if g.includeDelimiterTextAlignment() {
		parts = append(parts, combinator.NewDelimiterTextAlignment(rd))
	}
	if rd.Initiator != "" {
		parts = append(parts, combinator.NewInitiatorRegion(rd))
	}

	body, err := c.elementBody(rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		parts = append(parts, body)
	}

	if rd.Terminator != "" {
		parts = append(parts, combinator.NewTerminatorRegion(rd))
	}

	var node combinator.Node = combinator.NewElement(rd, parts)
	if rd.IsArray() {
		node = combinator.NewArray(rd, node)
	}
	if g.includeScopeBrackets() {
		node = combinator.NewVariableScope(rd, node)
	}
	return node, nil
}

func (c *Compiler) elementBody(rd *runtime.TermRuntimeData) (combinator.Node, error) {
	if rd.IsSimple() {
		var body combinator.Node
		if rd.HasEncoding() {
			body = combinator.NewText(rd)
		} else {
			body = combinator.NewBinaryInteger(rd)
		}
		if rd.OutputValueCalc != nil {
			body = combinator.NewDeferredValue(rd, body)
		}
		return body, nil
	}
	if len(rd.Children) != 1 {
		return nil, fmt.Errorf("complex element %q has %d content groups, want 1", rd.Name, len(rd.Children))
	}
	return c.compileTerm(rd.Children[0])
}

func (c *Compiler) compileSequence(rd *runtime.TermRuntimeData) (combinator.Node, error) {
	visible := make([]combinator.Node, 0, len(rd.Children))
	for _, child := range rd.Children {
		n, err := c.compileTerm(child)
		if err != nil {
			return nil, err
		}
		if n != nil {
			visible = append(visible, n)
		}
	}

	// A sequence with no visible children and no delimiters carries
	// nothing at run time: it is optimized out of the tree here, so a
	// zero-child sequence combinator is never instantiated.
	if len(visible) == 0 && !rd.HasDelimiters() {
		return nil, nil
	}

	g := c.gram(rd)
	var parts []combinator.Node
	if g.includeMandatoryAlignment() {
		parts = append(parts, combinator.NewMandatoryAlignment(rd))
	}
	if g.includeDelimiterTextAlignment() {
		parts = append(parts, combinator.NewDelimiterTextAlignment(rd))
	}
	if rd.Initiator != "" {
		parts = append(parts, combinator.NewInitiatorRegion(rd))
	}
	for i, child := range visible {
		if i > 0 && rd.Separator != "" {
			parts = append(parts, combinator.NewSeparatorRegion(rd))
		}
		parts = append(parts, child)
	}
	if rd.Terminator != "" {
		parts = append(parts, combinator.NewTerminatorRegion(rd))
	}

	var node combinator.Node = combinator.NewSequence(rd, parts)
	if g.includeScopeBrackets() {
		node = combinator.NewVariableScope(rd, node)
	}
	return node, nil
}

func (c *Compiler) compileChoice(rd *runtime.TermRuntimeData) (combinator.Node, error) {
	alts := make([]combinator.Node, 0, len(rd.Children))
	for _, child := range rd.Children {
		n, err := c.compileTerm(child)
		if err != nil {
			return nil, err
		}
		if n != nil {
			alts = append(alts, n)
		}
	}
	if len(alts) == 0 {
		return nil, nil
	}
	var node combinator.Node = combinator.NewChoice(rd, alts)
	if c.gram(rd).includeScopeBrackets() {
		node = combinator.NewVariableScope(rd, node)
	}
	return node, nil
}
