// Package logging gives every component a key/value logger backed by zap.
// Nothing is written until SetupDefaultLogger or InitLogging installs a backend.
package logging

// file: internal/logging/logger.go

import (
	"context"
)

// Logger is what components log through. Arguments after msg are alternating
// keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithField returns a logger that adds key=value to every line.
	WithField(key string, value any) Logger
	// WithRequestID tags lines with the JSON-RPC or HTTP request being served.
	WithRequestID(id string) Logger
	// WithContext applies the request id stored by ContextWithRequestID, if any.
	WithContext(ctx context.Context) Logger
}

// defaultLogger discards output until a backend is installed at startup.
var defaultLogger = GetNoopLogger()

// SetDefaultLogger replaces the logger GetLogger derives from. Nil is ignored.
func SetDefaultLogger(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// GetLogger returns the default logger tagged with component=name.
func GetLogger(name string) Logger {
	return defaultLogger.WithField("component", name)
}

type requestIDKey struct{}

// ContextWithRequestID stores id for WithContext to pick up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// contextLogger implements WithContext on top of WithRequestID.
func contextLogger(ctx context.Context, l Logger) Logger {
	if id, ok := RequestIDFromContext(ctx); ok {
		return l.WithRequestID(id)
	}
	return l
}
