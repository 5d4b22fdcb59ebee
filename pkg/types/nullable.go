package types

import (
	"bytes"
	"encoding/json"
)

// Nullable tracks whether a JSON field was present, and whether it was null, so
// PATCH payloads can distinguish "leave unchanged" from "clear".
type Nullable[T any] struct {
	Valid bool
	Value *T
}

// Set returns a present, non-null value.
func Set[T any](v T) Nullable[T] {
	return Nullable[T]{Valid: true, Value: &v}
}

// Null returns a present null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Valid: true}
}

// IsZero lets `omitzero` drop absent fields when marshaling.
func (n Nullable[T]) IsZero() bool {
	return !n.Valid
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	n.Valid = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}

	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Value = &parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid || n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
