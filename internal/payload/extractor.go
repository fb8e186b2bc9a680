// Package payload provides tolerant typed reads over the heterogeneous
// string->value maps that arrive as signal payloads from JSON. This is
// the single place where type coercion lives; rules must read through
// here rather than performing ad-hoc type assertions.
package payload

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Extractor wraps a decoded JSON object and exposes typed accessors that
// fall back to a default rather than panicking on a missing, null, or
// unparseable value.
type Extractor struct {
	data map[string]any
}

// New wraps data for typed reads. A nil map is accepted and behaves as
// empty.
func New(data map[string]any) Extractor {
	return Extractor{data: data}
}

// GetString returns the string at key, coercing numbers and bools to
// their textual form. Missing or null values return ("", false).
func (e Extractor) GetString(key string) (string, bool) {
	v, ok := e.raw(key)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// GetDouble returns the float64 at key, tolerating native numbers,
// numeric strings, and json.Number. Falls back to def on any failure.
func (e Extractor) GetDouble(key string, def float64) float64 {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}

// GetInt returns the int at key, truncating floating-point values and
// tolerating numeric strings. Falls back to def on any failure.
func (e Extractor) GetInt(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return int(f)
		}
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return def
}

// GetBool returns the bool at key, tolerating "true"/"false"/"1"/"0"
// string encodings and numeric 0/1. Falls back to def on any failure.
func (e Extractor) GetBool(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	}
	return def
}

// raw returns the undecoded value at key, treating a null value the same
// as a missing key.
func (e Extractor) raw(key string) (any, bool) {
	if e.data == nil {
		return nil, false
	}
	v, ok := e.data[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
