package dagflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateMatrix(t *testing.T) {
	cases := []struct {
		name  string
		pred  Predicate
		value any
		want  bool
	}{
		{"subset match", NewSubset(1, 2, 3), []any{1, 3}, true},
		{"subset mismatch", NewSubset(1, 2, 3), []any{1, 4}, false},
		{"superset match", NewSuperset("a"), []any{"a", "b"}, true},
		{"superset mismatch", NewSuperset("a", "c"), []any{"a", "b"}, false},
		{"emptyset empty slice", Emptyset{}, []any{}, true},
		{"emptyset nil", Emptyset{}, nil, true},
		{"emptyset nonempty", Emptyset{}, []any{1}, false},
		{"nonemptyset nonempty", NonEmptyset{}, []any{1}, true},
		{"nonemptyset empty", NonEmptyset{}, []any{}, false},
		{
			"pretransform match",
			NewPretransformSet(func(v any) (any, error) { return len(toSlice(v)), nil }, 0),
			[]any{},
			true,
		},
		{
			"pretransform mismatch",
			NewPretransformSet(func(v any) (any, error) { return len(toSlice(v)), nil }, 0),
			[]any{1},
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.pred.Match(tc.value))
		})
	}
}

func TestPretransformSetErrorResolvesFalse(t *testing.T) {
	boom := errors.New("boom")
	pred := NewPretransformSet(func(any) (any, error) { return nil, boom }, 0)
	assert.False(t, pred.Match("anything"))
}

func TestNotPretransformSetErrorResolvesTrue(t *testing.T) {
	boom := errors.New("boom")
	pred := NewNotPretransformSet(func(any) (any, error) { return nil, boom }, 0)
	assert.True(t, pred.Match("anything"))
}

func TestLiteralUncomparableDoesNotPanic(t *testing.T) {
	pred := NewLiteral([]int{1, 2, 3}) // slices are uncomparable
	assert.NotPanics(t, func() {
		pred.Match([]int{1, 2, 3})
	})
}
