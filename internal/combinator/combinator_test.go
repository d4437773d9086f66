package combinator_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	dfdlerrors "github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/infoset"
	"github.com/jacoelho/dfdl/internal/combinator"
	"github.com/jacoelho/dfdl/internal/grammar"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/internal/state"
	"github.com/jacoelho/dfdl/schema"
)

func compileSchema(t *testing.T, root *schema.Term) combinator.Node {
	t.Helper()
	descs, diags := runtime.Build(root)
	if len(diags) != 0 {
		t.Fatalf("Build() diagnostics: %v", diags)
	}
	tree, err := grammar.New(descs).Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return tree
}

func TestSequencePanicsOnZeroChildren(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewSequence() with zero children: want panic")
		}
	}()
	combinator.NewSequence(&runtime.TermRuntimeData{Name: "g"}, nil)
}

func choiceSchema() *schema.Term {
	return schema.NewComplexElement("r", schema.Properties{},
		schema.NewChoice(schema.Properties{},
			schema.NewElement("a", schema.Properties{Initiator: "A:", LengthBits: 8}),
			schema.NewElement("b", schema.Properties{Initiator: "B:", LengthBits: 8}),
		))
}

func TestChoiceBacktracksToMatchingAlternative(t *testing.T) {
	tree := compileSchema(t, choiceSchema())
	ps := state.NewPState([]byte("B:\x07"))
	ps.SetRetain(true)

	if err := tree.Parse(ps); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	root := ps.Root()
	children := root.Children()
	if len(children) != 1 || children[0].Name != "b" {
		t.Fatalf("root children = %v, want single element b", children)
	}
	v, ok := children[0].Value()
	if !ok || v != int64(7) {
		t.Fatalf("b value = %v, want 7", v)
	}
	if got := ps.Reader.Remaining(); got != 0 {
		t.Fatalf("Remaining() = %d bits, want all data consumed", got)
	}
	// The failed first alternative left nothing behind.
	if got := ps.DiagnosticCount(); got != 0 {
		t.Fatalf("DiagnosticCount() = %d, want speculative findings rolled back", got)
	}
	if got := ps.Depths(); got != (state.StackDepths{}) {
		t.Fatalf("Depths() = %+v, want all stacks drained", got)
	}
}

func TestChoiceFailsWhenNoAlternativeMatches(t *testing.T) {
	tree := compileSchema(t, choiceSchema())
	ps := state.NewPState([]byte("C:\x07"))

	err := tree.Parse(ps)
	if err == nil {
		t.Fatal("Parse() with unmatched data: want error")
	}
	var proc *dfdlerrors.ProcessingError
	if !errors.As(err, &proc) {
		t.Fatalf("Parse() error = %T, want *ProcessingError", err)
	}
	if got := ps.Depths(); got != (state.StackDepths{}) {
		t.Fatalf("Depths() after failed run = %+v, want all stacks drained", got)
	}
}

func TestChoiceUnparseSelectsBranchByName(t *testing.T) {
	tree := compileSchema(t, choiceSchema())
	root := infoset.NewComplex("r", infoset.NewSimple("b", int64(9)))
	us := state.NewUState(root)

	if err := tree.Unparse(us); err != nil {
		t.Fatalf("Unparse() error: %v", err)
	}
	if got := us.Writer.Bytes(); !bytes.Equal(got, []byte("B:\x09")) {
		t.Fatalf("Bytes() = %q, want B:\\x09", got)
	}
}

func TestChoiceUnparseRejectsUnknownBranch(t *testing.T) {
	tree := compileSchema(t, choiceSchema())
	root := infoset.NewComplex("r", infoset.NewSimple("z", int64(9)))
	us := state.NewUState(root)
	if err := tree.Unparse(us); err == nil {
		t.Fatal("Unparse() with unknown element: want error")
	}
}

func TestDelimiterMismatchCode(t *testing.T) {
	root := schema.NewComplexElement("r", schema.Properties{Terminator: ";"},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("a", schema.Properties{LengthBits: 8}),
		))
	tree := compileSchema(t, root)
	ps := state.NewPState([]byte{0x01, '!'})

	err := tree.Parse(ps)
	var proc *dfdlerrors.ProcessingError
	if !errors.As(err, &proc) || proc.Code != dfdlerrors.ErrDelimiterMismatch {
		t.Fatalf("Parse() = %v, want delimiter-mismatch processing error", err)
	}
	if got := ps.Depths(); got != (state.StackDepths{}) {
		t.Fatalf("Depths() after failed run = %+v, want all stacks drained", got)
	}
}

func TestTextPadAndTrim(t *testing.T) {
	schemaRoot := schema.NewComplexElement("r", schema.Properties{},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("name", schema.Properties{Encoding: "us-ascii", LengthBits: 32}),
		))
	tree := compileSchema(t, schemaRoot)

	ps := state.NewPState([]byte("ab  "))
	ps.SetRetain(true)
	if err := tree.Parse(ps); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	v, _ := ps.Root().Child("name").Value()
	if v != "ab" {
		t.Fatalf("parsed value = %q, want trailing pad trimmed", v)
	}

	us := state.NewUState(infoset.NewComplex("r", infoset.NewSimple("name", "ab")))
	if err := tree.Unparse(us); err != nil {
		t.Fatalf("Unparse() error: %v", err)
	}
	if got := us.Writer.Bytes(); !bytes.Equal(got, []byte("ab  ")) {
		t.Fatalf("Bytes() = %q, want space-padded to fixed length", got)
	}
}

func TestTextUnparseValueTooLong(t *testing.T) {
	schemaRoot := schema.NewComplexElement("r", schema.Properties{},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("name", schema.Properties{Encoding: "us-ascii", LengthBits: 16}),
		))
	tree := compileSchema(t, schemaRoot)
	us := state.NewUState(infoset.NewComplex("r", infoset.NewSimple("name", "abc")))
	if err := tree.Unparse(us); err == nil {
		t.Fatal("Unparse() of over-long value: want error")
	}
}

func arraySchema(occurs schema.Occurs) *schema.Term {
	return schema.NewComplexElement("r", schema.Properties{},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("item", schema.Properties{LengthBits: 8, Occurs: occurs}),
		))
}

func TestFixedArrayParse(t *testing.T) {
	tree := compileSchema(t, arraySchema(schema.Occurs{Kind: schema.OccursFixed, Count: 3}))
	ps := state.NewPState([]byte{1, 2, 3})
	ps.SetRetain(true)

	if err := tree.Parse(ps); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	arr := ps.Root().Child("item")
	if arr == nil || arr.Kind != infoset.KindArray {
		t.Fatalf("item node = %v, want array", arr)
	}
	members := arr.Children()
	if len(members) != 3 {
		t.Fatalf("array has %d members, want 3", len(members))
	}
	for i, m := range members {
		v, _ := m.Value()
		if v != int64(i+1) {
			t.Fatalf("member %d = %v, want %d", i, v, i+1)
		}
	}
}

func TestUnboundedArrayStopsAtEndOfData(t *testing.T) {
	tree := compileSchema(t, arraySchema(schema.Occurs{Kind: schema.OccursUnbounded}))
	ps := state.NewPState([]byte{5, 6})
	ps.SetRetain(true)

	if err := tree.Parse(ps); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := len(ps.Root().Child("item").Children()); got != 2 {
		t.Fatalf("array has %d members, want 2", got)
	}
	if got := ps.Depths(); got != (state.StackDepths{}) {
		t.Fatalf("Depths() = %+v, want all stacks drained", got)
	}
}

func TestArrayUnparseOverDeclaredBound(t *testing.T) {
	tree := compileSchema(t, arraySchema(schema.Occurs{Kind: schema.OccursFixed, Count: 1}))
	root := infoset.NewComplex("r",
		infoset.NewArray("item",
			infoset.NewSimple("item", int64(1)),
			infoset.NewSimple("item", int64(2)),
		))
	err := tree.Unparse(state.NewUState(root))
	if err == nil {
		t.Fatal("Unparse() beyond the declared bound: want error")
	}
	if !strings.Contains(err.Error(), "more than 1 occurrences") {
		t.Fatalf("error = %v, want occurrence bound violation", err)
	}
}

func TestArrayUnparseUnderFixedCountIsValidationFinding(t *testing.T) {
	tree := compileSchema(t, arraySchema(schema.Occurs{Kind: schema.OccursFixed, Count: 3}))
	root := infoset.NewComplex("r",
		infoset.NewArray("item", infoset.NewSimple("item", int64(1))))
	us := state.NewUState(root)

	if err := tree.Unparse(us); err != nil {
		t.Fatalf("Unparse() error: %v, want under-count to be non-fatal", err)
	}
	diags := us.Diagnostics()
	if len(diags) != 1 || diags[0].Code != string(dfdlerrors.ErrValidation) {
		t.Fatalf("Diagnostics() = %v, want one validation finding", diags)
	}
}

func TestRangeViolationIsValidationFinding(t *testing.T) {
	minV, maxV := int64(0), int64(10)
	schemaRoot := schema.NewComplexElement("r", schema.Properties{},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("a", schema.Properties{LengthBits: 8, MinValue: &minV, MaxValue: &maxV}),
			schema.NewElement("b", schema.Properties{LengthBits: 8, MinValue: &minV, MaxValue: &maxV}),
		))
	tree := compileSchema(t, schemaRoot)
	ps := state.NewPState([]byte{99, 100})
	ps.SetRetain(true)

	if err := tree.Parse(ps); err != nil {
		t.Fatalf("Parse() error: %v, want range violations to be non-fatal", err)
	}
	diags := ps.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("DiagnosticCount() = %d, want 2", len(diags))
	}
	// Most recent first: b's finding precedes a's.
	if !strings.Contains(diags[0].Message, `"b"`) || !strings.Contains(diags[1].Message, `"a"`) {
		t.Fatalf("Diagnostics() order = [%s | %s], want most recent first", diags[0].Message, diags[1].Message)
	}
}

func TestFatalValidationStopsParse(t *testing.T) {
	maxV := int64(10)
	schemaRoot := schema.NewComplexElement("r", schema.Properties{},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("a", schema.Properties{LengthBits: 8, MaxValue: &maxV}),
		))
	tree := compileSchema(t, schemaRoot)
	ps := state.NewPState([]byte{99})
	ps.SetFatalValidation(true)

	if err := tree.Parse(ps); err == nil {
		t.Fatal("Parse() with fatal validation: want error")
	}
	if got := ps.Depths(); got != (state.StackDepths{}) {
		t.Fatalf("Depths() after aborted run = %+v, want all stacks drained", got)
	}
}

func TestDeferredValueResolvesForwardReference(t *testing.T) {
	schemaRoot := schema.NewComplexElement("r", schema.Properties{},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("len", schema.Properties{LengthBits: 8, OutputValueCalc: "/r/b"}),
			schema.NewElement("b", schema.Properties{LengthBits: 8, OutputValueCalc: "/r/c"}),
			schema.NewElement("c", schema.Properties{LengthBits: 8}),
		))
	tree := compileSchema(t, schemaRoot)

	root := infoset.NewComplex("r",
		infoset.NewPendingSimple("len"),
		infoset.NewPendingSimple("b"),
		infoset.NewSimple("c", int64(5)),
	)
	us := state.NewUState(root)
	if err := tree.Unparse(us); err != nil {
		t.Fatalf("Unparse() error: %v", err)
	}
	// len's computation saw b still pending and was deferred; b's own
	// computation resolved immediately from c.
	if got := us.DeferredCount(); got != 1 {
		t.Fatalf("DeferredCount() = %d, want 1 before resolution", got)
	}
	if got := us.Mode(); got != state.Accumulating {
		t.Fatalf("Mode() = %v, want Accumulating once a value deferred", got)
	}
	if err := us.ResolveDeferred(); err != nil {
		t.Fatalf("ResolveDeferred() error: %v", err)
	}
	if got := us.Writer.Bytes(); !bytes.Equal(got, []byte{5, 5, 5}) {
		t.Fatalf("Bytes() = %v, want [5 5 5]", got)
	}
}

func TestDelimitedRecordRoundTrip(t *testing.T) {
	schemaRoot := schema.NewComplexElement("r",
		schema.Properties{Initiator: "[", Terminator: "]"},
		schema.NewSequence(schema.Properties{Separator: ","},
			schema.NewElement("a", schema.Properties{Encoding: "us-ascii", LengthBits: 8}),
			schema.NewElement("b", schema.Properties{Encoding: "us-ascii", LengthBits: 8}),
		))
	tree := compileSchema(t, schemaRoot)

	ps := state.NewPState([]byte("[x,y]"))
	ps.SetRetain(true)
	if err := tree.Parse(ps); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	a, _ := ps.Root().Child("a").Value()
	b, _ := ps.Root().Child("b").Value()
	if a != "x" || b != "y" {
		t.Fatalf("parsed values = %v, %v; want x, y", a, b)
	}

	us := state.NewUState(infoset.NewComplex("r",
		infoset.NewSimple("a", "x"),
		infoset.NewSimple("b", "y"),
	))
	if err := tree.Unparse(us); err != nil {
		t.Fatalf("Unparse() error: %v", err)
	}
	if got := us.Writer.Bytes(); !bytes.Equal(got, []byte("[x,y]")) {
		t.Fatalf("Bytes() = %q, want [x,y]", got)
	}
}
