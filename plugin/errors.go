package plugin

import (
	"errors"
	"fmt"

	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
)

var (
	// ErrDuplicateMethod indicates a method name is already bound.
	ErrDuplicateMethod = errors.New("method already registered")
	// ErrDuplicateOption indicates an option name is already declared.
	ErrDuplicateOption = errors.New("option already declared")
	// ErrUnknownMethod indicates no method is registered under the requested name.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrBinding indicates request params could not be bound to the declared
	// parameters. Use errors.As with *BindingError for details.
	ErrBinding = errors.New("cannot bind parameters")
	// ErrInvalidParam indicates a malformed parameter declaration at registration.
	ErrInvalidParam = errors.New("invalid parameter declaration")
	// ErrStreamTerminated is returned by Serve once the input stream is closed
	// or unreadable. It is joined with the underlying read error.
	ErrStreamTerminated = errors.New("input stream terminated")
)

// RPCError is a JSON-RPC error object. Handlers may return one to control
// the error payload sent to the host.
type RPCError = jsonrpc.Error

// ErrorCode is a JSON-RPC error code.
type ErrorCode = jsonrpc.ErrorCode

// NewRPCError builds an RPCError with the given code and message.
func NewRPCError(code ErrorCode, message string) *RPCError {
	return &RPCError{Code: code, Message: message}
}

// BindingError describes why a request's params do not satisfy a method's
// declared parameters.
type BindingError struct {
	Method string
	Reason string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Reason)
}

func (e *BindingError) Unwrap() error { return ErrBinding }

func bindingErrorf(method, format string, args ...any) *BindingError {
	return &BindingError{Method: method, Reason: fmt.Sprintf(format, args...)}
}

// HandlerError reports a panic recovered from a handler body.
type HandlerError struct {
	Method string
	Err    error
	Stack  []byte
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s: %v", e.Method, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
