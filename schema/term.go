// Package schema models resolved structural terms and their representation
// properties. Terms are built by a schema front end and are immutable once
// handed to the compiler; the engine itself never parses schema documents.
package schema

// TermKind identifies the structural kind of a term.
type TermKind uint8

const (
	// ElementTerm is a named element, simple or complex.
	ElementTerm TermKind = iota
	// SequenceTerm is an ordered model group.
	SequenceTerm
	// ChoiceTerm is an alternative model group.
	ChoiceTerm
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case ElementTerm:
		return "element"
	case SequenceTerm:
		return "sequence"
	case ChoiceTerm:
		return "choice"
	default:
		return "unknown"
	}
}

// Term is one schema-declared structural unit: an element or a model group.
// Terms form a tree; the parent link is set by the constructors and the
// whole tree is immutable after construction.
type Term struct {
	Name      string
	Namespace string
	Kind      TermKind
	Props     Properties

	children []*Term
	parent   *Term
}

// NewElement builds an element term with no children.
func NewElement(name string, props Properties) *Term {
	return &Term{Name: name, Kind: ElementTerm, Props: props}
}

// NewComplexElement builds an element term whose content is the given model group.
func NewComplexElement(name string, props Properties, content *Term) *Term {
	t := &Term{Name: name, Kind: ElementTerm, Props: props}
	if content != nil {
		content.parent = t
		t.children = []*Term{content}
	}
	return t
}

// NewSequence builds an ordered model group.
func NewSequence(props Properties, children ...*Term) *Term {
	t := &Term{Kind: SequenceTerm, Props: props}
	adopt(t, children)
	return t
}

// NewChoice builds an alternative model group.
func NewChoice(props Properties, children ...*Term) *Term {
	t := &Term{Kind: ChoiceTerm, Props: props}
	adopt(t, children)
	return t
}

func adopt(parent *Term, children []*Term) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = parent
		parent.children = append(parent.children, c)
	}
}

// Children returns the ordered child terms.
func (t *Term) Children() []*Term { return t.children }

// Parent returns the enclosing term, or nil for the root.
func (t *Term) Parent() *Term { return t.parent }

// NearestEnclosingSequence walks ancestors to the innermost sequence
// context. It returns nil when none exists, which for non-root terms
// indicates a malformed tree and for the root is expected: the caller
// decides whether that is a contract violation.
func (t *Term) NearestEnclosingSequence() *Term {
	for p := t.parent; p != nil; p = p.parent {
		if p.Kind == SequenceTerm {
			return p
		}
	}
	return nil
}

// IsArray reports whether the term repeats.
func (t *Term) IsArray() bool {
	return t.Kind == ElementTerm && t.Props.Occurs.Kind != OccursScalar
}
