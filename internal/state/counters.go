package state

import "github.com/jacoelho/dfdl/errors"

// counterStack is a vector-backed stack of 1-based position counters.
// Entry to a nested context pushes a fresh counter at 1; exit pops it and
// the caller then advances the parent's newly exposed counter.
type counterStack struct {
	values []int64
}

func (s *counterStack) push() {
	s.values = append(s.values, 1)
}

func (s *counterStack) pop(kind string) error {
	if len(s.values) == 0 {
		return errors.NewUsage(errors.ErrUsage, "%s position stack underflow", kind)
	}
	s.values = s.values[:len(s.values)-1]
	return nil
}

// top returns the innermost counter, or 1 outside any context.
func (s *counterStack) top() int64 {
	if len(s.values) == 0 {
		return 1
	}
	return s.values[len(s.values)-1]
}

func (s *counterStack) increment() {
	if len(s.values) > 0 {
		s.values[len(s.values)-1]++
	}
}

func (s *counterStack) depth() int { return len(s.values) }

// boundStack tracks the currently-known maximum occurrence count of the
// innermost array context. ReplaceTop refines the current scope's bound
// in place, which is distinct from entering a new scope.
type boundStack struct {
	values []int64
}

func (s *boundStack) push(bound int64) {
	s.values = append(s.values, bound)
}

func (s *boundStack) pop() error {
	if len(s.values) == 0 {
		return errors.NewUsage(errors.ErrUsage, "occurs bound stack underflow")
	}
	s.values = s.values[:len(s.values)-1]
	return nil
}

func (s *boundStack) replaceTop(bound int64) error {
	if len(s.values) == 0 {
		return errors.NewUsage(errors.ErrUsage, "occurs bound refinement outside any array scope")
	}
	s.values[len(s.values)-1] = bound
	return nil
}

func (s *boundStack) top() (int64, error) {
	if len(s.values) == 0 {
		return 0, errors.NewUsage(errors.ErrUsage, "occurs bound queried outside any array scope")
	}
	return s.values[len(s.values)-1], nil
}

func (s *boundStack) depth() int { return len(s.values) }
