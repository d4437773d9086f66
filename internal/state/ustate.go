package state

import (
	"strings"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/infoset"
	"github.com/jacoelho/dfdl/internal/bitio"
	"github.com/jacoelho/dfdl/internal/expr"
)

// UState is the unparse-direction execution context: it consumes the
// infoset event stream and produces the bit stream.
type UState struct {
	Context

	Writer *bitio.Writer

	cursor *infoset.Cursor
	root   *infoset.Node

	deferred []deferredRegion
}

// deferredRegion records a reserved stream region whose value computation
// is postponed until the complete data tree is available.
type deferredRegion struct {
	node   *infoset.Node
	calc   *expr.Compiled
	bitPos int64
	bits   int
	order  bitio.ByteOrder
}

// NewUState returns a fresh unparse context over the given data tree.
func NewUState(root *infoset.Node) *UState {
	return &UState{
		Writer: bitio.NewWriter(),
		cursor: infoset.NewCursor(root),
		root:   root,
	}
}

// Cursor returns the infoset traversal cursor.
func (u *UState) Cursor() *infoset.Cursor { return u.cursor }

// Root returns the data tree under traversal.
func (u *UState) Root() *infoset.Node { return u.root }

// Defer registers node for deferred evaluation over a reserved stream
// region. Only scalar nodes may be deferred: full resolution requires the
// whole tree to be resident, which is exactly what Accumulating mode
// guarantees, and structural nodes have no single value to compute.
// Deferring a structural node is a usage-contract violation and fails
// before any bytes of the region are written.
func (u *UState) Defer(node *infoset.Node, calc *expr.Compiled, bits int, order bitio.ByteOrder) error {
	if node == nil {
		return errors.NewUsage(errors.ErrUsage, "defer nil node")
	}
	if node.Kind != infoset.KindSimple {
		return errors.NewUsage(errors.ErrDeferNonScalar, "cannot defer %s node %s: only scalar nodes support deferred evaluation", node.Kind, node.Path())
	}
	if calc == nil {
		return errors.NewUsage(errors.ErrUsage, "defer %s without a value calculation", node.Path())
	}
	pos, err := u.Writer.ReserveBits(bits)
	if err != nil {
		return err
	}
	u.SetAccumulating()
	u.deferred = append(u.deferred, deferredRegion{
		node:   node,
		calc:   calc,
		bitPos: pos,
		bits:   bits,
		order:  order,
	})
	return nil
}

// DeferredCount returns the number of unresolved deferred regions.
func (u *UState) DeferredCount() int { return len(u.deferred) }

// ResolveDeferred runs the deferred-evaluation pass over the completed
// tree: registration order with re-queueing, repeated until a full round
// makes no progress. A stuck round reports the unresolved elements as a
// processing error (cycle or missing data).
func (u *UState) ResolveDeferred() error {
	pending := u.deferred
	u.deferred = nil
	for len(pending) > 0 {
		var next []deferredRegion
		for _, d := range pending {
			v, resolved, err := d.calc.EvaluateNumber(u.root)
			if err != nil {
				return err
			}
			if !resolved {
				next = append(next, d)
				continue
			}
			d.node.SetValue(v)
			if err := u.Writer.PatchBits(d.bitPos, uint64(v), d.bits, d.order); err != nil {
				return err
			}
		}
		if len(next) == len(pending) {
			return errors.NewProcessing(errors.ErrDeferredUnresolved, 0, "",
				"deferred values never resolved: %s", deferredPaths(next))
		}
		pending = next
	}
	return nil
}

func deferredPaths(regions []deferredRegion) string {
	paths := make([]string, len(regions))
	for i, d := range regions {
		paths[i] = d.node.Path()
	}
	return strings.Join(paths, ", ")
}
