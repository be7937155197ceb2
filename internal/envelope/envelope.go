// Package envelope collapses the upstream API's response envelope
// variants into plain collections.
//
// The records API answers the same list endpoint with any of:
//
//	[...]
//	{"products": [...]}
//	{"success": true, "data": {"products": [...]}}
//	{"data": [...]}
//
// Callers never assume a shape; everything passes through Normalize first.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedShape marks a response that matched none of the known
// envelope shapes. Callers degrade to an empty collection and surface a
// warning; this is never a hard failure.
var ErrUnexpectedShape = errors.New("unexpected_shape")

// Normalize decodes raw into a []T, trying each known envelope shape in
// priority order. The returned slice is never nil. On an unrecognized
// shape or an element that does not decode as T it returns an empty
// slice and an error wrapping ErrUnexpectedShape.
func Normalize[T any](raw []byte, key string) ([]T, error) {
	items, err := Raw(raw, key)
	if err != nil {
		return []T{}, err
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return []T{}, fmt.Errorf("%w: element %d: %v", ErrUnexpectedShape, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Raw extracts the payload array without decoding its elements.
func Raw(raw []byte, key string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}

	// Bare array.
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return items, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}

	// {<key>: [...]}
	if items, ok := arrayField(obj, key); ok {
		return items, nil
	}

	if data, ok := obj["data"]; ok {
		d := bytes.TrimSpace(data)
		// {"success": ..., "data": {<key>: [...]}}
		if len(d) > 0 && d[0] == '{' {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(d, &inner); err == nil {
				if items, ok := arrayField(inner, key); ok {
					return items, nil
				}
			}
		}
		// {"data": [...]}
		if len(d) > 0 && d[0] == '[' {
			var items []json.RawMessage
			if err := json.Unmarshal(d, &items); err == nil {
				return items, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no %q array found", ErrUnexpectedShape, key)
}

func arrayField(obj map[string]json.RawMessage, key string) ([]json.RawMessage, bool) {
	field, ok := obj[key]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(field)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}
