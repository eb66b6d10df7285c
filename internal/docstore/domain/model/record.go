package model

import (
	"reflect"
	"time"
)

// Record is one stored document: a field name to value mapping with no schema.
type Record map[string]interface{}

// Clone returns a deep copy of r. Nested maps and slices are copied, other
// values are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a copy of r with the top-level fields of patch applied.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal reports structural equality by value across all fields. Numeric kinds
// are compared as float64 so a record read back from a store that widens
// integers still equals the one written.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	return reflect.DeepEqual(normalize(map[string]interface{}(r)), normalize(map[string]interface{}(other)))
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Record:
		out := make(Record, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case Record:
		return normalize(map[string]interface{}(t))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}
