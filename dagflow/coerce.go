package dagflow

import "reflect"

// coerceViaReflection turns any ordered-sequence, set, or tuple-like value
// into a []any, and wraps a bare scalar as a singleton. This backs
// Subset/Superset/Emptyset's acceptance of arbitrary container shapes
// (spec.md §4.1) without requiring callers to pre-convert to []any.
func coerceViaReflection(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		// Treat a map as the set of its keys, mirroring a Python set/dict
		// membership test.
		keys := rv.MapKeys()
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		return out
	default:
		return []any{v}
	}
}
