package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RequestID is the opaque id of a JSON-RPC request. The host may use any JSON
// value; it is echoed back byte-for-byte in the response.
type RequestID struct {
	raw json.RawMessage
}

// NewRequestID creates a RequestID from any JSON-encodable value.
func NewRequestID(value any) *RequestID {
	b, err := json.Marshal(value)
	if err != nil {
		return &RequestID{raw: json.RawMessage("null")}
	}
	return &RequestID{raw: b}
}

// String returns a printable form of the ID. String ids are unquoted.
func (id *RequestID) String() string {
	if id.IsNil() {
		return ""
	}
	var s string
	if err := json.Unmarshal(id.raw, &s); err == nil {
		return s
	}
	return string(id.raw)
}

// IsNil returns true if the ID is absent or JSON null.
func (id *RequestID) IsNil() bool {
	if id == nil {
		return true
	}
	return len(id.raw) == 0 || bytes.Equal(id.raw, []byte("null"))
}

// MarshalJSON implements json.Marshaler
func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id == nil || len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RequestID) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("JSON-RPC ID is not valid JSON: %s", string(data))
	}
	id.raw = append(json.RawMessage(nil), data...)
	return nil
}
