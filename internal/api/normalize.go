package api

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ListShape reports how a list payload arrived on the wire. The backend
// is not consistent: some endpoints return a bare array, others wrap it
// in an envelope object holding the array under "data".
type ListShape int

const (
	ShapeArray ListShape = iota
	ShapeEnvelope
	ShapeUnrecognized
)

var ErrUnrecognizedShape = errors.New("unrecognized response shape")

// decodeList normalizes both shapes in one place so call sites never
// duck-type the payload themselves. Anything that is neither a decodable
// array nor an envelope with a decodable "data" array comes back as
// ShapeUnrecognized with a nil slice.
func decodeList[T any](payload json.RawMessage, out *[]T) (ListShape, error) {
	trim := bytes.TrimSpace(payload)
	if len(trim) == 0 {
		return ShapeUnrecognized, ErrUnrecognizedShape
	}

	if trim[0] == '[' {
		if err := json.Unmarshal(trim, out); err != nil {
			return ShapeUnrecognized, ErrUnrecognizedShape
		}
		return ShapeArray, nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trim, &env); err == nil && len(bytes.TrimSpace(env.Data)) > 0 {
		if json.Unmarshal(env.Data, out) == nil {
			return ShapeEnvelope, nil
		}
	}
	return ShapeUnrecognized, ErrUnrecognizedShape
}

// decodeObject accepts either a bare object or the same object inside a
// "data" envelope.
func decodeObject[T any](payload json.RawMessage, out *T) error {
	trim := bytes.TrimSpace(payload)
	if len(trim) == 0 {
		return ErrUnrecognizedShape
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trim, &env); err == nil && len(bytes.TrimSpace(env.Data)) > 0 {
		if json.Unmarshal(env.Data, out) == nil {
			return nil
		}
	}
	if err := json.Unmarshal(trim, out); err != nil {
		return ErrUnrecognizedShape
	}
	return nil
}
