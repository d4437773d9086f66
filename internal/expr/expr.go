// Package expr compiles and evaluates the expression-valued schema
// properties (occurs bounds, output value calculations, variable
// defaults) against an infoset.
package expr

import (
	"math"
	"strconv"

	"github.com/antchfx/xpath"
	"github.com/jf-tech/go-corelib/caches"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/infoset"
)

// Compiled is an expression compiled once at schema-compile time and
// evaluated many times at run time. Immutable and safe for concurrent use.
type Compiled struct {
	Source string
	expr   *xpath.Expr
}

// Compile compiles src, consulting the process-wide expression cache.
func Compile(src string) (*Compiled, error) {
	ex, err := caches.GetXPathExpr(src)
	if err != nil {
		d := errors.NewDiagnosticf(errors.ErrExpressionCompile, "", "compile expression %q: %v", src, err)
		return nil, &d
	}
	return &Compiled{Source: src, expr: ex}, nil
}

// EvaluateNumber evaluates the expression against the tree rooted at root
// and coerces the result to an integer. The second result reports whether
// the value is resolved: false means the expression references data that
// is not yet present or not yet computed, which callers treat as a
// deferral signal rather than an error.
func (c *Compiled) EvaluateNumber(root *infoset.Node) (int64, bool, error) {
	res := c.expr.Evaluate(NewNavigator(root))
	switch v := res.(type) {
	case float64:
		if math.IsNaN(v) {
			return 0, false, nil
		}
		return int64(v), true, nil
	case bool:
		if v {
			return 1, true, nil
		}
		return 0, true, nil
	case string:
		return parseNumber(c.Source, v)
	case *xpath.NodeIterator:
		if !v.MoveNext() {
			return 0, false, nil
		}
		nav, ok := v.Current().(*Navigator)
		if !ok {
			return parseNumber(c.Source, v.Current().Value())
		}
		node := nav.Node()
		if node == nil || (node.Kind == infoset.KindSimple && !node.Resolved()) {
			return 0, false, nil
		}
		return coerceNumber(c.Source, node)
	default:
		return 0, false, errors.NewUsage(errors.ErrUsage, "expression %q: unexpected result type %T", c.Source, res)
	}
}

func parseNumber(src, s string) (int64, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, errors.NewProcessing(errors.ErrProcessing, 0, "", "expression %q: non-numeric result %q", src, s)
	}
	return n, true, nil
}

func coerceNumber(src string, node *infoset.Node) (int64, bool, error) {
	v, ok := node.Value()
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int64:
		return n, true, nil
	case int:
		return int64(n), true, nil
	case uint64:
		return int64(n), true, nil
	case float64:
		return int64(n), true, nil
	case string:
		return parseNumber(src, n)
	default:
		return 0, false, errors.NewProcessing(errors.ErrProcessing, 0, node.Path(), "expression %q: non-numeric node value %T", src, v)
	}
}
