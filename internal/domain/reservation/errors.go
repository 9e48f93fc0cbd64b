package reservation

import (
	"errors"
	"fmt"

	"stayhub/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("reservation: not found")
	ErrVersionConflict = errors.New("reservation: concurrent update detected")
	ErrNotCheckInDay   = errors.New("reservation: arrival can only be marked on the check-in day or the day after")
	ErrCheckInPassed   = errors.New("reservation: check-in date has already passed")
)

// ValidationError reports malformed input on a reservation request. The
// caller fixes the named field and retries; it is never retried as-is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("reservation: invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError names the state the reservation was in and the
// event that was illegal there. Transitions outside the table always fail
// loudly, they are never silently ignored.
type InvalidTransitionError struct {
	State State
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reservation: event %q is not allowed in state %q", e.Event, e.State)
}

// AmountMismatchError carries the exact expectation so a payment caller
// can render a precise message.
type AmountMismatchError struct {
	Event    Event
	Expected money.Money
	Received money.Money
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("reservation: %s expects %s, received %s", e.Event, e.Expected, e.Received)
}

func invalidTransition(state State, event Event) error {
	return &InvalidTransitionError{State: state, Event: event}
}
