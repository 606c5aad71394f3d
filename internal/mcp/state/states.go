// Package state defines the states and events of the MCP connection lifecycle.
package state

// file: internal/mcp/state/states.go

import "github.com/dkoosis/deezerwidget/internal/fsm"

// Connection lifecycle states.
const (
	StateUninitialized fsm.State = "uninitialized" // Connected, no initialize yet.
	StateInitializing  fsm.State = "initializing"  // initialize answered, waiting for notifications/initialized.
	StateInitialized   fsm.State = "initialized"   // Handshake complete.
	StateClosed        fsm.State = "closed"        // Transport closed or session deleted.
)

// IsTerminal reports whether no further messages may be processed in s.
func IsTerminal(s fsm.State) bool {
	return s == StateClosed
}
