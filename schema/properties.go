package schema

// ByteOrder selects multi-byte integer layout for binary representations.
type ByteOrder uint8

const (
	// BigEndian is most-significant byte first.
	BigEndian ByteOrder = iota
	// LittleEndian is least-significant byte first.
	LittleEndian
)

// OccursKind describes how a term's repetition bound is determined.
type OccursKind uint8

const (
	// OccursScalar marks a non-repeating term.
	OccursScalar OccursKind = iota
	// OccursFixed repeats exactly Count times.
	OccursFixed
	// OccursExpression resolves the bound from an expression at run time.
	OccursExpression
	// OccursUnbounded repeats until the data is exhausted or a terminator matches.
	OccursUnbounded
)

// Occurs bundles the occurrence kind with its static count or expression.
type Occurs struct {
	Kind  OccursKind
	Count int
	// Expr is an expression over the infoset yielding the bound.
	// Meaningful only for OccursExpression.
	Expr string
}

// VariableDecl declares a runtime variable introduced by a term's scope.
type VariableDecl struct {
	Name string
	// DefaultExpr is an optional expression for the initial value.
	DefaultExpr string
}

// Properties is the resolved representation property set of one term.
// Absent string properties are empty; absent numeric properties are zero.
// The property set is immutable after schema compilation.
type Properties struct {
	// Encoding names the character encoding for textual representations.
	// Empty means the term has no textual representation and therefore
	// no mandatory text alignment.
	Encoding string

	// Delimiters. Empty means absent.
	Initiator  string
	Terminator string
	Separator  string

	// AlignmentBits is an explicit alignment requirement in bits; zero
	// means no explicit alignment beyond what the encoding mandates.
	AlignmentBits int64

	// LengthBits is the fixed representation length in bits for simple
	// elements (binary) or eight times the fixed character count (text).
	LengthBits int

	ByteOrder ByteOrder

	Occurs Occurs

	// OutputValueCalc is an expression computing this element's unparsed
	// value from other parts of the infoset. Non-empty marks the element
	// as deferred when the expression references not-yet-visited data.
	OutputValueCalc string

	// Variables declared by this term's scope. Non-empty triggers the
	// scope-bracket combinators.
	Variables []VariableDecl

	// MinValue/MaxValue optionally declare a value range constraint
	// checked during traversal. Violations are validation diagnostics,
	// non-fatal by default.
	MinValue *int64
	MaxValue *int64
}

// HasEncoding reports whether a character encoding is resolved.
func (p *Properties) HasEncoding() bool { return p.Encoding != "" }

// HasDelimiters reports whether any delimiter property is present.
func (p *Properties) HasDelimiters() bool {
	return p.Initiator != "" || p.Terminator != "" || p.Separator != ""
}

// HasVariables reports whether the term declares runtime variables.
func (p *Properties) HasVariables() bool { return len(p.Variables) > 0 }
