// Package mcperrors defines the protocol-level error types raised by the dispatcher and the
// capability registry, and maps them onto JSON-RPC 2.0 error codes.
// Tool-internal failures never appear here; tool handlers turn those into data.
package mcperrors

// file: internal/mcperrors/errors.go

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode is the JSON-RPC code an error is reported with.
type ErrorCode int

// Standard JSON-RPC codes followed by server-defined codes in the -32000..-32099 range.
const (
	ErrParseError     ErrorCode = -32700
	ErrInvalidRequest ErrorCode = -32600
	ErrMethodNotFound ErrorCode = -32601
	ErrInvalidParams  ErrorCode = -32602
	ErrInternalError  ErrorCode = -32603

	// ErrRequestSequence is returned when a method arrives in the wrong lifecycle state.
	ErrRequestSequence ErrorCode = -32001
	// ErrNotFound is returned for unknown tool ids and resource URIs.
	ErrNotFound ErrorCode = -32002
	// ErrResourceUnavailable is returned when a resource payload could not be produced.
	ErrResourceUnavailable ErrorCode = -32003
)

// Capability kinds used in NotFoundError and DuplicateCapabilityError context.
const (
	KindTool     = "tool"
	KindResource = "resource"
)

// BaseError is the common base for protocol error types.
type BaseError struct {
	// Code is the JSON-RPC code reported to the client.
	Code ErrorCode
	// Message is a human-readable message; it is also the client-facing message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
	// Context holds structured details. Only allow-listed keys are sent to clients.
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("MCPError (Code: %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("MCPError (Code: %d): %s", e.Code, e.Message)
}

// Unwrap returns the cause, enabling errors.Is and errors.As.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key-value pair to the error's context map.
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ParseError means the incoming bytes were not valid JSON.
type ParseError struct{ BaseError }

// InvalidRequestError means the message was JSON but not a valid JSON-RPC request.
type InvalidRequestError struct{ BaseError }

// MethodNotFoundError means no route exists for the method.
type MethodNotFoundError struct{ BaseError }

// InvalidParamsError means params could not be decoded into the method's shape.
type InvalidParamsError struct{ BaseError }

// ValidationError means tool arguments failed the tool's input schema.
// Parameter names the offending argument.
type ValidationError struct {
	BaseError
	Parameter string
}

// NotFoundError means a capability lookup failed.
type NotFoundError struct {
	BaseError
	Kind string
	ID   string
}

// DuplicateCapabilityError is returned by registration when an id or template URI is taken.
type DuplicateCapabilityError struct {
	BaseError
	Kind string
	ID   string
}

// RequestSequenceError means a method was called in a lifecycle state that does not allow it.
type RequestSequenceError struct{ BaseError }

// ResourceUnavailableError means a resource's payload producer failed.
type ResourceUnavailableError struct{ BaseError }

// InternalError is a generic server-side failure.
type InternalError struct{ BaseError }

func newBase(code ErrorCode, message string, cause error, context map[string]interface{}) BaseError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return BaseError{Code: code, Message: message, Cause: cause, Context: context}
}

// NewParseError creates a parse error.
func NewParseError(message string, cause error, context map[string]interface{}) error {
	return &ParseError{BaseError: newBase(ErrParseError, message, cause, context)}
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string, cause error, context map[string]interface{}) error {
	return &InvalidRequestError{BaseError: newBase(ErrInvalidRequest, message, cause, context)}
}

// NewMethodNotFoundError creates an error for an unknown method.
func NewMethodNotFoundError(method string, cause error, context map[string]interface{}) error {
	e := &MethodNotFoundError{BaseError: newBase(ErrMethodNotFound, "Method not found: "+method, cause, context)}
	e.WithContext("method", method)
	return e
}

// NewInvalidParamsError creates an invalid params error.
func NewInvalidParamsError(message string, cause error, context map[string]interface{}) error {
	return &InvalidParamsError{BaseError: newBase(ErrInvalidParams, message, cause, context)}
}

// NewValidationError creates an error naming the argument that failed validation.
func NewValidationError(toolName, parameter, reason string, cause error) error {
	msg := fmt.Sprintf("Invalid argument %q: %s", parameter, reason)
	e := &ValidationError{BaseError: newBase(ErrInvalidParams, msg, cause, nil), Parameter: parameter}
	e.WithContext("parameter", parameter)
	if toolName != "" {
		e.WithContext("toolName", toolName)
	}
	return e
}

// NewNotFoundError creates a lookup failure for a capability of the given kind.
func NewNotFoundError(kind, id string) error {
	var msg string
	switch kind {
	case KindTool:
		msg = fmt.Sprintf("Tool %s not found", id)
	case KindResource:
		msg = fmt.Sprintf("Resource %s not found", id)
	default:
		msg = fmt.Sprintf("%s %s not found", kind, id)
	}
	e := &NotFoundError{BaseError: newBase(ErrNotFound, msg, nil, nil), Kind: kind, ID: id}
	e.WithContext("kind", kind).WithContext("id", id)
	return e
}

// NewDuplicateCapabilityError creates a registration conflict error.
func NewDuplicateCapabilityError(kind, id string) error {
	e := &DuplicateCapabilityError{
		BaseError: newBase(ErrInternalError, fmt.Sprintf("%s %q is already registered", kind, id), nil, nil),
		Kind:      kind,
		ID:        id,
	}
	e.WithContext("kind", kind).WithContext("id", id)
	return e
}

// NewRequestSequenceError creates an error for a method received in the wrong state.
func NewRequestSequenceError(method, state string) error {
	e := &RequestSequenceError{BaseError: newBase(ErrRequestSequence,
		fmt.Sprintf("Method %s is not allowed in state %s", method, state), nil, nil)}
	e.WithContext("method", method).WithContext("state", state)
	return e
}

// NewResourceUnavailableError creates an error for a resource whose payload could not be produced.
func NewResourceUnavailableError(uri string, cause error) error {
	e := &ResourceUnavailableError{BaseError: newBase(ErrResourceUnavailable,
		fmt.Sprintf("Resource %s is unavailable", uri), cause, nil)}
	e.WithContext("uri", uri)
	return e
}

// NewInternalError creates a generic internal error.
func NewInternalError(message string, cause error, context map[string]interface{}) error {
	return &InternalError{BaseError: newBase(ErrInternalError, message, cause, context)}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
