package state

// file: internal/mcp/state/events.go

import "github.com/dkoosis/deezerwidget/internal/fsm"

// Lifecycle events.
const (
	EventInitializeRequest fsm.Event = "rcvd_initialize_request"
	EventClientInitialized fsm.Event = "rcvd_client_initialized_notif"
	EventConnectionClosed  fsm.Event = "connection_closed"
)

// Methods with lifecycle meaning.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
	MethodCancelled   = "notifications/cancelled"
)

// EventForMethod maps a method to its lifecycle event, or "" for operational methods.
func EventForMethod(method string) fsm.Event {
	switch method {
	case MethodInitialize:
		return EventInitializeRequest
	case MethodInitialized:
		return EventClientInitialized
	default:
		return ""
	}
}

// allowedAnytime lists methods accepted in every non-terminal state.
var allowedAnytime = map[string]struct{}{
	MethodPing:      {},
	MethodCancelled: {},
}
