package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

// FrameDelimiter terminates every message on the wire, in both directions.
const FrameDelimiter = "\n\n"

// Message is the raw JSON representation of a JSON-RPC message.
type Message []byte

// Request represents a JSON-RPC request (with an ID) or notification (without ID).
// Params is either a JSON array (positional) or a JSON object (named).
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc,omitempty"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
	ID             *RequestID      `json:"id,omitempty"`
}

// IsNotification reports whether the request carries no id and so expects
// no response.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// DecodeRequest decodes a single frame into a Request. The jsonrpc version is
// not enforced since hosts commonly omit it on requests.
//
// A nil Request is returned only when the frame is not JSON at all. When the
// frame is JSON but not a well-formed request, the returned Request carries
// whatever id and method could be recovered so the error can be addressed.
func DecodeRequest(frame []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		if partial := decodeLoose(frame); partial != nil {
			return partial, fmt.Errorf("invalid request: %w", err)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if req.JSONRPCVersion != "" && req.JSONRPCVersion != ProtocolVersion {
		return &req, fmt.Errorf("invalid JSON-RPC version: expected %q, got %q", ProtocolVersion, req.JSONRPCVersion)
	}
	if req.Method == "" {
		return &req, fmt.Errorf("request message must have a method")
	}
	return &req, nil
}

func decodeLoose(frame []byte) *Request {
	var loose struct {
		Method json.RawMessage `json:"method"`
		ID     json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(frame, &loose); err != nil {
		return nil
	}

	req := &Request{}
	if len(loose.ID) > 0 {
		req.ID = &RequestID{raw: loose.ID}
	}
	if len(loose.Method) > 0 {
		var name string
		if err := json.Unmarshal(loose.Method, &name); err == nil {
			req.Method = name
		} else {
			req.Method = string(loose.Method)
		}
	}
	return req
}

// ParamsKind classifies the shape of a params payload.
type ParamsKind int

const (
	ParamsNone ParamsKind = iota
	ParamsArray
	ParamsObject
	ParamsInvalid
)

// Kind reports whether the request params are positional, named, or absent.
func (r *Request) Kind() ParamsKind {
	p := bytes.TrimSpace(r.Params)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return ParamsNone
	}
	switch p[0] {
	case '[':
		return ParamsArray
	case '{':
		return ParamsObject
	default:
		return ParamsInvalid
	}
}

// Response represents a JSON-RPC response.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
	ID             *RequestID      `json:"id"`
}

// NewResultResponse builds a successful JSON-RPC response object. A nil
// result is encoded as JSON null.
func NewResultResponse(id *RequestID, result any) (*Response, error) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Result:         resultBytes,
		ID:             id,
	}, nil
}

// NewErrorResponse builds an error JSON-RPC response with the given code.
func NewErrorResponse(id *RequestID, code ErrorCode, message string, data any) *Response {
	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}

// Notification is a one-way message: it has no id and expects no reply.
type Notification struct {
	JSONRPCVersion string `json:"jsonrpc"`
	Method         string `json:"method"`
	Params         any    `json:"params"`
}

// NewNotification builds a notification for method with the given params.
func NewNotification(method string, params any) *Notification {
	return &Notification{
		JSONRPCVersion: ProtocolVersion,
		Method:         method,
		Params:         params,
	}
}
