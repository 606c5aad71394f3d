package state

// file: internal/mcp/state/machine.go

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/fsm"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
)

// Machine tracks the lifecycle of one connection or HTTP session.
type Machine struct {
	fsm.FSM
	logger logging.Logger
}

// NewMachine builds a lifecycle machine. onReady, if set, runs each time the
// handshake completes through notifications/initialized.
func NewMachine(logger logging.Logger, onReady func(ctx context.Context)) (*Machine, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "mcp_state_machine")

	b := fsm.NewFSM(StateUninitialized, log)
	b.AddTransition(fsm.Transition{
		From:  []fsm.State{StateUninitialized},
		Event: EventInitializeRequest,
		To:    StateInitializing,
	})
	b.AddTransition(fsm.Transition{
		From:  []fsm.State{StateInitializing},
		Event: EventClientInitialized,
		To:    StateInitialized,
		Action: func(ctx context.Context, _ fsm.Event, _ interface{}) error {
			log.Debug("Client completed initialization.")
			if onReady != nil {
				onReady(ctx)
			}
			return nil
		},
	})
	b.AddTransition(fsm.Transition{
		From:  []fsm.State{StateUninitialized, StateInitializing, StateInitialized},
		Event: EventConnectionClosed,
		To:    StateClosed,
	})

	if err := b.Build(); err != nil {
		return nil, errors.Wrap(err, "failed to build MCP state machine")
	}
	return &Machine{FSM: b, logger: log}, nil
}

// NewStatelessMachine returns a machine that starts out initialized. It serves
// requests that arrive without a session.
func NewStatelessMachine(logger logging.Logger) (*Machine, error) {
	m, err := NewMachine(logger, nil)
	if err != nil {
		return nil, err
	}
	if err := m.SetState(StateInitialized); err != nil {
		return nil, err
	}
	return m, nil
}

// ValidateMethod checks whether method may be processed in the current state.
// Operational methods are accepted once initialize has been received.
func (m *Machine) ValidateMethod(method string) error {
	current := m.CurrentState()
	if IsTerminal(current) {
		return mcperrors.NewRequestSequenceError(method, string(current))
	}
	if _, ok := allowedAnytime[method]; ok {
		return nil
	}

	switch event := EventForMethod(method); {
	case event == EventClientInitialized && current == StateInitialized:
		// Repeated notification; harmless.
		return nil
	case event != "":
		if !m.CanTransition(event) {
			m.logger.Warn("Received out-of-sequence lifecycle method.", "method", method, "state", current)
			return mcperrors.NewRequestSequenceError(method, string(current))
		}
		return nil
	case current == StateUninitialized:
		m.logger.Warn("Received method before initialization.", "method", method)
		return mcperrors.NewRequestSequenceError(method, string(current))
	default:
		return nil
	}
}

// Accept validates method and applies its lifecycle transition, if any.
func (m *Machine) Accept(ctx context.Context, method string) error {
	if err := m.ValidateMethod(method); err != nil {
		return err
	}
	event := EventForMethod(method)
	if event == "" || !m.CanTransition(event) {
		return nil
	}
	if err := m.Transition(ctx, event, nil); err != nil {
		return mcperrors.NewInternalError("Lifecycle transition failed", err,
			map[string]interface{}{"method": method, "state": string(m.CurrentState())})
	}
	return nil
}

// Close moves the machine to its terminal state. It is safe to call more than once.
func (m *Machine) Close(ctx context.Context) {
	if m.CanTransition(EventConnectionClosed) {
		if err := m.Transition(ctx, EventConnectionClosed, nil); err != nil {
			m.logger.Warn("Failed to close state machine.", "error", err)
		}
	}
}
