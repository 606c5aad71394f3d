// Package fsm provides a small finite state machine builder on top of looplab/fsm.
package fsm

// file: internal/fsm/fsm.go

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	lfsm "github.com/looplab/fsm"
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// TransitionAction runs after the machine has entered the transition's destination.
type TransitionAction func(ctx context.Context, event Event, data interface{}) error

// GuardCondition decides whether a transition may happen.
type GuardCondition func(ctx context.Context, event Event, data interface{}) bool

// Transition defines a transition rule between states.
// Self-transitions (To in From) are rejected by looplab/fsm and must not be declared.
type Transition struct {
	From      []State
	To        State
	Event     Event
	Action    TransitionAction
	Condition GuardCondition
}

// FSM is a buildable state machine.
type FSM interface {
	// AddTransition stores a transition definition. Call Build() after adding all transitions.
	AddTransition(transition Transition) FSM
	// Build creates the underlying machine.
	Build() error
	// CurrentState returns the current state.
	CurrentState() State
	// CanTransition reports whether event is defined for the current state.
	CanTransition(event Event) bool
	// Transition fires event.
	Transition(ctx context.Context, event Event, data interface{}) error
	// SetState moves the machine without running callbacks.
	SetState(state State) error
	// Reset returns to the initial state.
	Reset() error
}

// ErrNotBuilt is returned when the machine is used before a successful Build.
var ErrNotBuilt = errors.New("fsm has not been built")

type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition
	fsm          *lfsm.FSM
	buildErr     error
	mu           sync.RWMutex
}

// NewFSM creates a new FSM builder with the given initial state.
func NewFSM(initialState State, logger logging.Logger) FSM {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &loopFSM{
		initialState: initialState,
		logger:       logger.WithField("component", "fsm"),
	}
}

func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.fsm != nil:
		l.setBuildErr(errors.New("cannot AddTransition after Build"))
	case len(t.From) == 0:
		l.setBuildErr(errors.Newf("transition for event %q has no source states", t.Event))
	default:
		for _, s := range t.From {
			if s == t.To {
				l.setBuildErr(errors.Newf("event %q declares a self-transition on %q", t.Event, s))
				return l
			}
		}
		l.transitions = append(l.transitions, t)
	}
	return l
}

func (l *loopFSM) setBuildErr(err error) {
	l.logger.Error("Invalid FSM transition definition.", "error", err)
	if l.buildErr == nil {
		l.buildErr = err
	}
}

func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil || l.buildErr != nil {
		return l.buildErr
	}

	descs := make(map[string]*lfsm.EventDesc)
	order := make([]string, 0, len(l.transitions))
	callbacks := make(lfsm.Callbacks)
	guarded := make(map[Event][]Transition)
	entered := make(map[State][]Transition)

	for _, t := range l.transitions {
		name := string(t.Event)
		desc, ok := descs[name]
		if !ok {
			desc = &lfsm.EventDesc{Name: name, Dst: string(t.To)}
			descs[name] = desc
			order = append(order, name)
		} else if desc.Dst != string(t.To) {
			l.buildErr = errors.Newf("conflicting destinations %q and %q for event %q", desc.Dst, t.To, name)
			return l.buildErr
		}
		for _, s := range t.From {
			desc.Src = appendUnique(desc.Src, string(s))
		}
		if t.Condition != nil {
			guarded[t.Event] = append(guarded[t.Event], t)
		}
		if t.Action != nil {
			entered[t.To] = append(entered[t.To], t)
		}
	}

	for ev, ts := range guarded {
		callbacks["before_"+string(ev)] = l.guardCallback(ts)
	}
	for st, ts := range entered {
		callbacks["enter_"+string(st)] = l.actionCallback(ts)
	}

	events := make([]lfsm.EventDesc, 0, len(order))
	for _, name := range order {
		events = append(events, *descs[name])
	}
	l.fsm = lfsm.NewFSM(string(l.initialState), events, callbacks)
	l.logger.Debug("FSM built.", "initialState", l.initialState, "events", len(events))
	return nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func matches(t Transition, e *lfsm.Event) bool {
	if string(t.Event) != e.Event {
		return false
	}
	for _, s := range t.From {
		if string(s) == e.Src {
			return true
		}
	}
	return false
}

func eventData(e *lfsm.Event) interface{} {
	if len(e.Args) > 0 {
		return e.Args[0]
	}
	return nil
}

func (l *loopFSM) guardCallback(ts []Transition) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		for _, t := range ts {
			if matches(t, e) && !t.Condition(ctx, t.Event, eventData(e)) {
				l.logger.Debug("Guard rejected transition.", "event", e.Event, "from", e.Src)
				e.Cancel(errors.Newf("guard for event %q from state %q failed", e.Event, e.Src))
				return
			}
		}
	}
}

func (l *loopFSM) actionCallback(ts []Transition) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		for _, t := range ts {
			if !matches(t, e) {
				continue
			}
			if err := t.Action(ctx, t.Event, eventData(e)); err != nil {
				l.logger.Error("Transition action failed.", "event", e.Event, "to", e.Dst, "error", err)
			}
		}
	}
}

func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return ""
	}
	return State(l.fsm.Current())
}

func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return false
	}
	return l.fsm.Can(string(event))
}

func (l *loopFSM) Transition(ctx context.Context, event Event, data interface{}) error {
	l.mu.RLock()
	machine := l.fsm
	l.mu.RUnlock()
	if machine == nil {
		return ErrNotBuilt
	}

	from := machine.Current()
	var args []interface{}
	if data != nil {
		args = append(args, data)
	}
	if err := machine.Event(ctx, string(event), args...); err != nil {
		l.logger.Debug("FSM transition failed.", "event", event, "from", from, "error", err)
		return errors.Wrapf(err, "transition %q from %q", event, from)
	}
	l.logger.Debug("FSM transition succeeded.", "event", event, "from", from, "to", machine.Current())
	return nil
}

func (l *loopFSM) SetState(state State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fsm == nil {
		return ErrNotBuilt
	}
	l.fsm.SetState(string(state))
	return nil
}

func (l *loopFSM) Reset() error {
	return l.SetState(l.initialState)
}
