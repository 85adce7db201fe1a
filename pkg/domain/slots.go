package domain

import (
	"encoding/json"
	"maps"
)

// Slots maps a field name to its collected value (float64, int or string).
//
// Values that went through a JSON round trip (persistent stores) come back as
// float64 or json.Number, so readers should use the typed accessors.
type Slots map[string]any

// Has reports whether the field has been collected.
func (s Slots) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// Float returns the field as a float64.
func (s Slots) Float(field string) (float64, bool) {
	switch v := s[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns the field as an int, truncating fractional values.
func (s Slots) Int(field string) (int, bool) {
	switch v := s[field].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		f, err := v.Float64()
		return int(f), err == nil
	}
	return 0, false
}

// String returns the field as a string.
func (s Slots) String(field string) (string, bool) {
	v, ok := s[field].(string)
	return v, ok
}

// Clone returns a shallow copy; slot values are scalars.
func (s Slots) Clone() Slots {
	if s == nil {
		return make(Slots)
	}
	return maps.Clone(s)
}
