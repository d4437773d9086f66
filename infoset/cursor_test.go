package infoset

import "testing"

func collectEvents(t *testing.T, c *Cursor) []Event {
	t.Helper()
	var out []Event
	for c.HasNext() {
		ev, err := c.Advance()
		if err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func TestCursorEventOrder(t *testing.T) {
	root := NewComplex("r",
		NewSimple("a", int64(1)),
		NewArray("items",
			NewSimple("items", int64(2)),
			NewSimple("items", int64(3)),
		),
	)
	events := collectEvents(t, NewCursor(root))

	want := []struct {
		kind EventKind
		name string
	}{
		{StartElement, "r"},
		{StartElement, "a"},
		{EndElement, "a"},
		{StartArray, "items"},
		{StartElement, "items"},
		{EndElement, "items"},
		{StartElement, "items"},
		{EndElement, "items"},
		{EndArray, "items"},
		{EndElement, "r"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Node.Name != w.name {
			t.Fatalf("event %d = %v %s, want %v %s", i, events[i].Kind, events[i].Node.Name, w.kind, w.name)
		}
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	c := NewCursor(NewComplex("r", NewSimple("a", int64(1))))

	first, err := c.Peek()
	if err != nil {
		t.Fatalf("Peek() error: %v", err)
	}
	second, err := c.Peek()
	if err != nil {
		t.Fatalf("Peek() error: %v", err)
	}
	if first != second {
		t.Fatalf("repeated Peek() = %v then %v, want identical events", first, second)
	}

	advanced, err := c.Advance()
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if advanced != first {
		t.Fatalf("Advance() = %v, want the peeked event %v", advanced, first)
	}
}

func TestEndArrayRecognizedByLookahead(t *testing.T) {
	arr := NewArray("xs", NewSimple("xs", int64(1)))
	c := NewCursor(NewComplex("r", arr))

	// Consume through the last member's end event.
	for i := 0; i < 4; i++ {
		if _, err := c.Advance(); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
	}
	ev, err := c.Peek()
	if err != nil {
		t.Fatalf("Peek() error: %v", err)
	}
	if ev.Kind != EndArray {
		t.Fatalf("Peek() = %v, want EndArray lookahead", ev.Kind)
	}
	// The lookahead left the event unconsumed.
	ev, err = c.Advance()
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if ev.Kind != EndArray {
		t.Fatalf("Advance() after lookahead = %v, want EndArray", ev.Kind)
	}
}

func TestCursorExhaustion(t *testing.T) {
	c := NewCursor(NewSimple("a", int64(1)))
	for c.HasNext() {
		if _, err := c.Advance(); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
	}
	if _, err := c.Peek(); err == nil {
		t.Fatal("Peek() past end: want error")
	}
	if _, err := c.Advance(); err == nil {
		t.Fatal("Advance() past end: want error")
	}
}

func TestCurrentNodeTracksConsumedEvent(t *testing.T) {
	c := NewCursor(NewComplex("r", NewSimple("a", int64(1))))
	if _, err := c.Advance(); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if _, err := c.Advance(); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if got := c.CurrentNode(); got == nil || got.Name != "a" {
		t.Fatalf("CurrentNode() = %v, want a", got)
	}
}

func TestTruncateChildrenDetachesParents(t *testing.T) {
	a := NewSimple("a", int64(1))
	b := NewSimple("b", int64(2))
	r := NewComplex("r", a, b)
	r.TruncateChildren(1)
	if got := len(r.Children()); got != 1 {
		t.Fatalf("len(Children()) = %d, want 1", got)
	}
	if b.Parent() != nil {
		t.Fatal("truncated child must be detached from its parent")
	}
	if a.Parent() != r {
		t.Fatal("kept child must remain attached")
	}
}
