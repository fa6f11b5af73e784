package scoring

import (
	"bytes"
	"encoding/json"
	"math"
)

// isAbsent reports whether a raw payload carries no value at all.
func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// field extracts the named member of a submitted answer object. Clients may
// also send the bare value, so anything that is not an object is returned as
// is. The bool is false when nothing usable was submitted.
func field(raw json.RawMessage, name string) (json.RawMessage, bool) {
	if isAbsent(raw) {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '{' {
		return trimmed, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[name]
	if !ok || isAbsent(v) {
		return nil, false
	}
	return v, true
}

// scalarEqual compares two decoded JSON values the way strict equality does:
// same kind and same value. Composite values never match.
func scalarEqual(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// decodeIndices reads a JSON array of integral numbers. Fractional or
// non-numeric entries make the whole selection unusable.
func decodeIndices(raw json.RawMessage) ([]int, bool) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, it := range items {
		n, ok := it.(float64)
		if !ok || n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, false
		}
		out = append(out, int(n))
	}
	return out, true
}

// decodeMoves reads a JSON array of move tokens. Entries that are not strings
// are kept as empty tokens so they still consume a step.
func decodeMoves(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, len(items))
	for i, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			out[i] = s
		}
	}
	return out, true
}
