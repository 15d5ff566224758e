package llmjson

import (
	"math"
	"strconv"
	"strings"
)

// String returns obj[key] when it is a non-empty string.
func String(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Strings returns the string items of obj[key], dropping anything else.
// The result is never nil.
func Strings(obj map[string]any, key string) []string {
	out := []string{}
	items, ok := obj[key].([]any)
	if !ok {
		return out
	}
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns the object items of obj[key].
func Objects(obj map[string]any, key string) []map[string]any {
	items, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Truthy follows loose truthiness: false, 0, "", null and absence are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		// arrays and objects
		return true
	}
}

// Number coerces numbers, numeric strings and booleans. ok is false for
// anything that is not numeric.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
