package expr

import (
	"testing"

	"github.com/jacoelho/dfdl/infoset"
)

func compile(t *testing.T, src string) *Compiled {
	t.Helper()
	c, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", src, err)
	}
	return c
}

func testTree() *infoset.Node {
	return infoset.NewComplex("r",
		infoset.NewSimple("count", int64(3)),
		infoset.NewArray("item",
			infoset.NewSimple("item", int64(10)),
			infoset.NewSimple("item", int64(20)),
		),
		infoset.NewPendingSimple("pending"),
	)
}

func TestCompileError(t *testing.T) {
	if _, err := Compile("count("); err == nil {
		t.Fatal("Compile() of malformed expression: want error")
	}
}

func TestCompileCachesRepeatedSources(t *testing.T) {
	a := compile(t, "1 + 1")
	b := compile(t, "1 + 1")
	if a.Source != b.Source {
		t.Fatalf("sources differ: %q vs %q", a.Source, b.Source)
	}
}

func TestEvaluateNumber(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int64
	}{
		{"arithmetic", "2 + 3", 5},
		{"path to scalar", "/r/count", 3},
		{"count over array members", "count(/r/item/item)", 2},
		{"relative from document", "r/count", 3},
		{"boolean coerces", "2 > 1", 1},
	}
	root := testTree()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, resolved, err := compile(t, tt.src).EvaluateNumber(root)
			if err != nil {
				t.Fatalf("EvaluateNumber() error: %v", err)
			}
			if !resolved {
				t.Fatal("EvaluateNumber() reported unresolved")
			}
			if got != tt.want {
				t.Fatalf("EvaluateNumber() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluateNumberUnresolved(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"pending scalar", "/r/pending"},
		{"missing element", "/r/nothing"},
	}
	root := testTree()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resolved, err := compile(t, tt.src).EvaluateNumber(root)
			if err != nil {
				t.Fatalf("EvaluateNumber() error: %v", err)
			}
			if resolved {
				t.Fatal("EvaluateNumber() reported resolved, want deferral signal")
			}
		})
	}
}

func TestEvaluateNumberNonNumericNode(t *testing.T) {
	root := infoset.NewComplex("r", infoset.NewSimple("name", "alpha"))
	_, _, err := compile(t, "/r/name").EvaluateNumber(root)
	if err == nil {
		t.Fatal("EvaluateNumber() over non-numeric text: want error")
	}
}

func TestNavigatorSubtreeValue(t *testing.T) {
	root := infoset.NewComplex("r",
		infoset.NewSimple("a", int64(1)),
		infoset.NewComplex("g", infoset.NewSimple("b", int64(2))),
	)
	nav := NewNavigator(root)
	if got := nav.Value(); got != "12" {
		t.Fatalf("document Value() = %q, want concatenated scalars %q", got, "12")
	}
	if !nav.MoveToChild() {
		t.Fatal("MoveToChild() to root element failed")
	}
	if nav.LocalName() != "r" {
		t.Fatalf("LocalName() = %q, want r", nav.LocalName())
	}
	if !nav.MoveToChild() || !nav.MoveToNext() {
		t.Fatal("navigation to second child failed")
	}
	if nav.LocalName() != "g" || nav.Value() != "2" {
		t.Fatalf("second child = %s value %q, want g value 2", nav.LocalName(), nav.Value())
	}
	if !nav.MoveToParent() || nav.LocalName() != "r" {
		t.Fatal("MoveToParent() did not return to the root element")
	}
}
