// Package lifecycle tracks whether the clock is in the foreground and runs
// work only while it is.
package lifecycle

import (
	"fmt"
	"slices"
	"sync"

	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

// State represents the current host lifecycle state.
type State string

const (
	// StateResumed indicates the clock is visible and should keep time.
	StateResumed State = "resumed"

	// StateInactive indicates the host is transitioning, for example while a
	// window loses focus.
	StateInactive State = "inactive"

	// StatePaused indicates the clock is not visible but the process is alive.
	StatePaused State = "paused"

	// StateDetached indicates the clock is still hosted but no longer shown.
	StateDetached State = "detached"
)

// States lists every valid state.
var States = []State{StateResumed, StateInactive, StatePaused, StateDetached}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return slices.Contains(States, s)
}

// ParseState converts a name such as "paused" into a State.
func ParseState(name string) (State, error) {
	s := State(name)
	if !s.Valid() {
		return "", &clockerrors.ParseError{
			DataType: "lifecycle state",
			Input:    name,
			Err:      fmt.Errorf("want one of %v", States),
		}
	}
	return s, nil
}

// Handler is called when the lifecycle state changes.
type Handler func(state State)

// Service holds the lifecycle state and notifies handlers of changes.
type Service struct {
	mu       sync.RWMutex
	state    State
	handlers map[int]Handler
	nextID   int
}

// NewService creates a service in the given state.
func NewService(initial State) *Service {
	return &Service{
		state:    initial,
		handlers: make(map[int]Handler),
	}
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsResumed returns true if the service is in the resumed state.
func (s *Service) IsResumed() bool {
	return s.State() == StateResumed
}

// AddHandler registers a handler to be called on lifecycle changes.
// Returns a function that removes the handler.
func (s *Service) AddHandler(handler Handler) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// Update moves the service to state and notifies handlers in registration
// order. Moving to the current state does nothing.
func (s *Service) Update(state State) error {
	if !state.Valid() {
		return &clockerrors.ClockError{
			Op:   "lifecycle.Update",
			Kind: clockerrors.KindLifecycle,
			Err:  &clockerrors.ParseError{DataType: "lifecycle state", Input: string(state)},
		}
	}

	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return nil
	}
	s.state = state
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, s.handlers[id])
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(state)
	}
	return nil
}
