package reservations

import (
	"context"
	"time"

	"stayhub/internal/domain/shared/events"
)

// Clock is injected everywhere a decision depends on the current moment,
// keeping the engine deterministic under test. Nothing in the engine
// reads the wall clock directly.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock port.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Notifier is the fire-and-forget outbound port. It receives the domain
// events the aggregate recorded, drained after the transition has been
// persisted; a delivery failure is logged and never rolls the
// transition back.
type Notifier interface {
	Notify(ctx context.Context, event events.DomainEvent) error
}

// NotifierFunc adapts a function to the Notifier port.
type NotifierFunc func(ctx context.Context, event events.DomainEvent) error

func (f NotifierFunc) Notify(ctx context.Context, event events.DomainEvent) error {
	return f(ctx, event)
}
