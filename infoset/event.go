package infoset

// EventKind identifies one structural event in the traversal stream.
type EventKind uint8

const (
	// StartElement opens a simple or complex element.
	StartElement EventKind = iota
	// EndElement closes a simple or complex element.
	EndElement
	// StartArray opens an array of homogeneous children.
	StartArray
	// EndArray closes an array.
	EndArray
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case StartElement:
		return "start-element"
	case EndElement:
		return "end-element"
	case StartArray:
		return "start-array"
	case EndArray:
		return "end-array"
	default:
		return "unknown"
	}
}

// Event is one structural event with its payload node. Events are
// produced and consumed strictly in document order.
type Event struct {
	Kind EventKind
	Node *Node
}

// IsStart reports whether the event opens a construct.
func (e Event) IsStart() bool {
	return e.Kind == StartElement || e.Kind == StartArray
}
