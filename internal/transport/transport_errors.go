package transport

// file: internal/transport/transport_errors.go

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// ErrorCode identifies a transport failure.
type ErrorCode int

// Transport error codes.
const (
	ErrGeneric ErrorCode = iota + 1000
	// ErrInvalidMessage means the frame is JSON but not a JSON-RPC 2.0 message.
	ErrInvalidMessage
	// ErrMessageTooLarge means the frame exceeded MaxMessageSize.
	ErrMessageTooLarge
	// ErrTransportClosed means the transport was closed or the peer hung up.
	ErrTransportClosed
	ErrReadTimeout
	ErrWriteTimeout
	// ErrJSONParseFailed means the frame is not valid JSON.
	ErrJSONParseFailed
)

const previewLen = 100

// Error is a transport-level failure.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *Error) Error() string {
	base := fmt.Sprintf("TransportError [%d] %s", e.Code, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair and returns e.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is matches transport errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// NewError creates a transport error. The cause gets a stack trace attached.
func NewError(code ErrorCode, message string, cause error) *Error {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewMessageSizeError reports a frame larger than maxSize.
func NewMessageSizeError(size, maxSize int, fragment []byte) *Error {
	return NewError(ErrMessageTooLarge,
		fmt.Sprintf("message size %d exceeds maximum allowed size %d", size, maxSize), nil).
		WithContext("messagePreview", preview(fragment))
}

// NewParseError reports a frame that is not valid JSON.
func NewParseError(message []byte, cause error) *Error {
	return NewError(ErrJSONParseFailed, "failed to parse JSON message syntax", cause).
		WithContext("messagePreview", preview(message)).
		WithContext("messageLength", len(message))
}

// NewTimeoutError reports a cancelled or expired read or write.
func NewTimeoutError(operation string, cause error) *Error {
	code := ErrReadTimeout
	if operation == "write" {
		code = ErrWriteTimeout
	}
	return NewError(code, operation+" operation timed out", cause).
		WithContext("operation", operation)
}

// NewClosedError reports an operation on a closed transport.
func NewClosedError(operation string) *Error {
	return NewError(ErrTransportClosed, "cannot perform "+operation+" on closed transport", nil).
		WithContext("operation", operation)
}

// IsClosedError reports whether err means the stream is gone.
func IsClosedError(err error) bool {
	var transportErr *Error
	if errors.As(err, &transportErr) && transportErr.Code == ErrTransportClosed {
		return true
	}
	return errors.Is(err, io.EOF)
}

// IsMessageTooLargeError reports whether err rejected a frame for its size.
func IsMessageTooLargeError(err error) bool {
	var transportErr *Error
	return errors.As(err, &transportErr) && transportErr.Code == ErrMessageTooLarge
}

// IsFramingError reports whether err concerns a single bad frame, after
// which the stream can still be read.
func IsFramingError(err error) bool {
	var transportErr *Error
	if !errors.As(err, &transportErr) {
		return false
	}
	switch transportErr.Code {
	case ErrJSONParseFailed, ErrInvalidMessage, ErrMessageTooLarge:
		return true
	default:
		return false
	}
}

func preview(b []byte) string {
	if len(b) > previewLen {
		b = b[:previewLen]
	}
	return string(b)
}
