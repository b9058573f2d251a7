// Package dagflow provides the core DAG execution engine: the graph data
// model, the per-node execution gate, the concurrent scheduler, and the
// predicate algebra used to gate conditional edges.
package dagflow

import "log/slog"

// Predicate gates a conditional edge. The scheduler calls Match with the
// producer's output to decide whether the edge should be treated as
// satisfied for the purposes of the consuming node's execution gate.
//
// Match must not mutate program state; it is evaluated purely against the
// value it is given.
type Predicate interface {
	Match(v any) bool
}

// toSlice coerces a value into a slice for set-style comparisons. A nil
// value becomes an empty slice. Slices and arrays yield their elements,
// maps yield their keys, and anything else is treated as a singleton.
func toSlice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	return coerceViaReflection(v)
}

// Subset matches values whose elements are all contained in S.
type Subset struct {
	S []any
}

// NewSubset builds a Subset predicate from arbitrary comparable elements.
func NewSubset(elems ...any) Subset { return Subset{S: elems} }

// Match reports whether every element of v is present in the Subset's set.
func (p Subset) Match(v any) bool {
	set := toSlice(v)
	for _, item := range set {
		if !containsAny(p.S, item) {
			return false
		}
	}
	return true
}

// Superset matches values that contain every element of S.
type Superset struct {
	S []any
}

// NewSuperset builds a Superset predicate from arbitrary comparable elements.
func NewSuperset(elems ...any) Superset { return Superset{S: elems} }

// Match reports whether every element of the Superset's set is present in v.
func (p Superset) Match(v any) bool {
	set := toSlice(v)
	for _, item := range p.S {
		if !containsAny(set, item) {
			return false
		}
	}
	return true
}

// Emptyset matches an absent producer output, or an empty ordered-sequence
// or set.
type Emptyset struct{}

// Match reports whether v is nil or an empty sequence/set.
func (Emptyset) Match(v any) bool {
	if v == nil {
		return true
	}
	s := toSlice(v)
	return s != nil && len(s) == 0 || isEmptyContainer(v)
}

// NonEmptyset matches anything that is not Emptyset.
type NonEmptyset struct{}

// Match reports the logical negation of Emptyset.Match.
func (NonEmptyset) Match(v any) bool {
	return !(Emptyset{}).Match(v)
}

// Literal matches a single exact value via Go equality.
type Literal struct {
	X any
}

// NewLiteral builds a Literal predicate.
func NewLiteral(x any) Literal { return Literal{X: x} }

// Match reports whether v equals the literal value.
func (p Literal) Match(v any) bool {
	defer func() { recover() }() //nolint:errcheck // unequal/uncomparable types must not panic
	return v == p.X
}

// TransformErrFunc computes a derived value from a producer's output. It
// may fail; PretransformSet and NotPretransformSet treat a failure as a
// non-match (PretransformSet) or a match (NotPretransformSet), logging the
// error at warning level, mirroring the source system's behavior of
// catching exceptions raised during predicate evaluation.
type TransformErrFunc func(v any) (any, error)

// PretransformSet matches v iff F(v) equals Y. If F returns an error, the
// match resolves to false and the error is logged at warning level.
type PretransformSet struct {
	F TransformErrFunc
	Y any
}

// NewPretransformSet builds a PretransformSet predicate.
func NewPretransformSet(f TransformErrFunc, y any) PretransformSet {
	return PretransformSet{F: f, Y: y}
}

// Match applies F to v and compares the result to Y.
func (p PretransformSet) Match(v any) bool {
	out, err := p.F(v)
	if err != nil {
		slog.Warn("dagflow: PretransformSet predicate raised", "error", err)
		return false
	}
	return out == p.Y
}

// NotPretransformSet is the logical negation of PretransformSet.
type NotPretransformSet struct {
	F TransformErrFunc
	Y any
}

// NewNotPretransformSet builds a NotPretransformSet predicate.
func NewNotPretransformSet(f TransformErrFunc, y any) NotPretransformSet {
	return NotPretransformSet{F: f, Y: y}
}

// Match applies F to v and reports whether the result differs from Y.
func (p NotPretransformSet) Match(v any) bool {
	out, err := p.F(v)
	if err != nil {
		slog.Warn("dagflow: NotPretransformSet predicate raised", "error", err)
		return true
	}
	return out != p.Y
}

// containsAny reports whether item is present in set using Go equality,
// falling back to false for uncomparable values instead of panicking.
func containsAny(set []any, item any) (found bool) {
	defer func() {
		if recover() != nil {
			found = false
		}
	}()
	for _, s := range set {
		if s == item {
			return true
		}
	}
	return false
}

// isEmptyContainer reports whether v is an empty string or an empty
// map[string]any, rounding out the set of "empty" shapes Emptyset
// recognizes beyond those toSlice already reduces to an empty slice.
func isEmptyContainer(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	}
	return false
}
