// Package tree implements the JSON tree semantics shared by the self-hosted
// realtime backends: slash-separated paths, null deletes, and empty
// branches disappear.
package tree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	apperrors "firebase-kit/internal/shared/errors"
)

const forbiddenChars = ".$#[]"

// Split parses a slash-separated path. "" and "/" address the root.
func Split(path string) ([]string, error) {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s == "" {
			continue
		}
		if strings.ContainsAny(s, forbiddenChars) {
			return nil, fmt.Errorf("%w: segment %q contains one of %q", apperrors.ErrInvalidPath, s, forbiddenChars)
		}
		segments = append(segments, s)
	}
	return segments, nil
}

// Join renders segments as a canonical path without a leading slash.
func Join(segments []string) string {
	return strings.Join(segments, "/")
}

// Normalize converts v into plain JSON values (map[string]any, []any,
// float64, string, bool, nil) and prunes null entries and empty maps.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: value is not JSON: %v", apperrors.ErrInvalidInput, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return prune(out), nil
}

func prune(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		if child = prune(child); child == nil {
			delete(m, k)
		} else {
			m[k] = child
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Get returns the value at segments below root, nil when absent.
func Get(root any, segments []string) any {
	node := root
	for _, s := range segments {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[s]
	}
	return node
}

// Set returns root with the value at segments replaced by value, creating
// intermediate maps. A nil value deletes and prunes emptied parents. value
// must already be normalized; root is modified in place.
func Set(root any, segments []string, value any) any {
	if len(segments) == 0 {
		return value
	}
	m, ok := root.(map[string]any)
	if !ok {
		if value == nil {
			return root
		}
		m = make(map[string]any)
	}

	head := segments[0]
	child := Set(m[head], segments[1:], value)
	if child == nil {
		delete(m, head)
	} else {
		m[head] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Update applies each entry of patch as a Set relative to segments. Patch
// keys may themselves be slash-separated paths.
func Update(root any, segments []string, patch map[string]any) (any, error) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		rel, err := Split(k)
		if err != nil {
			return root, err
		}
		if len(rel) == 0 {
			return root, fmt.Errorf("%w: empty update key", apperrors.ErrInvalidPath)
		}
		value, err := Normalize(patch[k])
		if err != nil {
			return root, err
		}
		full := append(append([]string{}, segments...), rel...)
		root = Set(root, full, value)
	}
	return root, nil
}

// Copy returns a deep copy of a normalized value.
func Copy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = Copy(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = Copy(child)
		}
		return out
	default:
		return v
	}
}
