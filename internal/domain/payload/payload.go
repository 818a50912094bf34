// Package payload validates untyped JSON request bodies before they are bound
// into typed requests.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Object is a decoded JSON object whose values are kept raw until a field is read.
type Object map[string]json.RawMessage

// Decode reads a single JSON object from r.
func Decode(r io.Reader) (Object, error) {
	if r == nil {
		return nil, invalid("", "request body is required")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, invalid("", "request body could not be read")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, invalid("", "request body is required")
	}
	if raw[0] != '{' {
		return nil, invalid("", "request body must be a JSON object")
	}

	var obj Object
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&obj); err != nil {
		return nil, invalid("", "request body is not valid JSON")
	}
	if dec.More() {
		return nil, invalid("", "request body must contain a single JSON object")
	}
	if obj == nil {
		obj = Object{}
	}
	return obj, nil
}

func (o Object) lookup(field string) (json.RawMessage, bool) {
	v, ok := o[field]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

// RequiredString returns field as a string. It fails when the field is
// absent, null, not a string, or blank after trimming.
func (o Object) RequiredString(field string) (string, error) {
	v, ok := o.lookup(field)
	if !ok {
		return "", invalid(field, "is required")
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", invalid(field, "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", invalid(field, "must not be empty")
	}
	return s, nil
}

// OptionalString returns nil when field is absent or null.
func (o Object) OptionalString(field string) (*string, error) {
	v, ok := o.lookup(field)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, invalid(field, "must be a string")
	}
	return &s, nil
}

// OptionalObject returns the compact JSON text of a nested object, or nil
// when field is absent or null.
func (o Object) OptionalObject(field string) (json.RawMessage, error) {
	v, ok := o.lookup(field)
	if !ok {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalid(field, "must be a JSON object")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, invalid(field, "must be a JSON object")
	}
	return json.RawMessage(buf.Bytes()), nil
}

// OptionalBool returns false when field is absent or null.
func (o Object) OptionalBool(field string) (bool, error) {
	v, ok := o.lookup(field)
	if !ok {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return false, invalid(field, "must be a boolean")
	}
	return b, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// FieldOf returns the field named by a validation error, or "" when err is
// not one.
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
