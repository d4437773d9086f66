package grammar

import "github.com/jacoelho/dfdl/internal/runtime"

// lazyBool caches one inclusion decision after its first evaluation.
type lazyBool struct {
	computed bool
	value    bool
}

func (l *lazyBool) get(compute func() bool) bool {
	if !l.computed {
		l.value = compute()
		l.computed = true
	}
	return l.value
}

// termGram holds the cached inclusion decisions for one term. There is
// exactly one termGram per descriptor, so each decision is evaluated at
// most once per compilation.
type termGram struct {
	rd *runtime.TermRuntimeData

	scopeBrackets          lazyBool
	mandatoryAlignment     lazyBool
	delimiterTextAlignment lazyBool
}

// gram returns the memoized gram for rd, creating it on first use.
func (c *Compiler) gram(rd *runtime.TermRuntimeData) *termGram {
	if g, ok := c.grams[rd]; ok {
		return g
	}
	g := &termGram{rd: rd}
	c.grams[rd] = g
	return g
}

// includeScopeBrackets is true only when the term declares at least one
// runtime variable; otherwise both bracket combinators are entirely
// absent, not empty placeholders.
func (g *termGram) includeScopeBrackets() bool {
	return g.scopeBrackets.get(func() bool {
		return g.rd.HasVariables()
	})
}

// includeMandatoryAlignment is true only for terms with a resolved
// character encoding or an explicit alignment: textual data implies
// alignment requirements.
func (g *termGram) includeMandatoryAlignment() bool {
	return g.mandatoryAlignment.get(func() bool {
		return g.rd.MandatoryAlignment() > 0
	})
}

// includeDelimiterTextAlignment is true only for terms that additionally
// have delimiters: delimiter matching has its own alignment precondition,
// evaluated independently of the general text alignment. Both may hold.
func (g *termGram) includeDelimiterTextAlignment() bool {
	return g.delimiterTextAlignment.get(func() bool {
		return g.rd.HasDelimiters()
	})
}
