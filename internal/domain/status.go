package domain

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Lifecycle events. Each target status is reached by exactly one event.
const (
	EventStart    = "start"
	EventComplete = "complete"
	EventBlock    = "block"
	EventCancel   = "cancel"
	EventReset    = "reset"
)

// Machine states. Untyped so they convert to statekit.StateID wherever the
// builder expects one; values match the Status constants.
const (
	statePending    = "pending"
	stateInProgress = "in_progress"
	stateCompleted  = "completed"
	stateBlocked    = "blocked"
	stateCancelled  = "cancelled"
)

// statusContext carries the todo being transitioned.
type statusContext struct {
	From Status
}

// EventFor returns the event that moves a todo into target.
func EventFor(target Status) (string, error) {
	switch target {
	case StatusPending:
		return EventReset, nil
	case StatusInProgress:
		return EventStart, nil
	case StatusCompleted:
		return EventComplete, nil
	case StatusBlocked:
		return EventBlock, nil
	case StatusCancelled:
		return EventCancel, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
}

func newStatusMachine(initial Status) (*statekit.Interpreter[statusContext], error) {
	builder := statekit.NewMachine[statusContext]("todo-status").
		WithInitial(statekit.StateID(initial)).
		WithContext(statusContext{From: initial})

	builder.State(statePending).
		On(EventStart).Target(stateInProgress).
		On(EventComplete).Target(stateCompleted).
		On(EventBlock).Target(stateBlocked).
		On(EventCancel).Target(stateCancelled).
		Done()

	builder.State(stateInProgress).
		On(EventComplete).Target(stateCompleted).
		On(EventBlock).Target(stateBlocked).
		On(EventCancel).Target(stateCancelled).
		On(EventReset).Target(statePending).
		Done()

	builder.State(stateBlocked).
		On(EventStart).Target(stateInProgress).
		On(EventComplete).Target(stateCompleted).
		On(EventCancel).Target(stateCancelled).
		On(EventReset).Target(statePending).
		Done()

	builder.State(stateCompleted).
		On(EventReset).Target(statePending).
		Done()

	builder.State(stateCancelled).
		On(EventReset).Target(statePending).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building status machine: %w", err)
	}
	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return interp, nil
}

// Transition checks that a todo may move from one status to another.
// Staying in the same status is always allowed.
func Transition(from, to Status) error {
	if !from.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	if from == to {
		return nil
	}
	event, err := EventFor(to)
	if err != nil {
		return err
	}
	interp, err := newStatusMachine(from)
	if err != nil {
		return err
	}
	interp.Send(statekit.Event{Type: statekit.EventType(event)})
	if Status(string(interp.State().Value)) != to {
		return fmt.Errorf("%w: cannot %s a %s todo", ErrInvalidTransition, event, from)
	}
	return nil
}

// AllowedTargets lists the statuses reachable from from in one step.
func AllowedTargets(from Status) []Status {
	var out []Status
	for _, to := range Statuses {
		if to != from && Transition(from, to) == nil {
			out = append(out, to)
		}
	}
	return out
}
