// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package record

import "reflect"

// deepClone copies a JSON-shaped value (maps, slices, scalars — the
// shape anything decoded by encoding/json produces) so that a value
// handed out by get() can never be mutated by the caller to corrupt the
// record's internal state.
func deepClone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepClone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepClone(e)
		}
		return out
	default:
		// Scalars (string, float64, bool, nil) are immutable in Go's
		// JSON representation; nothing further to isolate.
		return v
	}
}

// deepEqual reports whether two JSON-shaped values are structurally
// equal. Map key order and slice/array element order matter for slices
// but not for maps.
func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, ev := range av {
			bev, exists := bv[k]
			if !exists || !deepEqual(ev, bev) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, ev := range av {
			if !deepEqual(ev, bv[i]) {
				return false
			}
		}
		return true
	default:
		if an, ok := numericValue(a); ok {
			bn, ok := numericValue(b)
			return ok && an == bn
		}
		return a == b
	}
}

// numericValue normalizes any Go numeric kind to float64 so that, e.g.,
// an int(2) set locally compares equal to a float64(2) decoded off the
// wire — both represent the same JSON number.
func numericValue(v any) (float64, bool) {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(reflect.ValueOf(v).Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(reflect.ValueOf(v).Uint()), true
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(v).Float(), true
	default:
		return 0, false
	}
}
