package secondary

import (
	"context"
	"time"
)

// WakeScheduler schedules wall-clock triggers that are delivered to the
// process even after it was suspended or terminated. Scheduling an id that is
// already pending replaces it.
type WakeScheduler interface {
	// Schedule registers a trigger firing at fireAt with an opaque payload.
	Schedule(ctx context.Context, id string, fireAt time.Time, payload []byte) error

	// Cancel removes pending triggers. Unknown ids are ignored.
	Cancel(ctx context.Context, ids []string) error

	// Pending lists the ids of triggers that have not fired yet.
	Pending(ctx context.Context) ([]string, error)
}

// WakeInbox exposes fired triggers to a host that polls for delivery.
// Delivery is at-least-once: a trigger stays due until acknowledged.
type WakeInbox interface {
	// Due returns triggers whose fire time is at or before now, oldest first.
	Due(ctx context.Context, now time.Time) ([]FiredTrigger, error)

	// Ack removes delivered triggers.
	Ack(ctx context.Context, ids []string) error
}

// FiredTrigger is a trigger handed to the delivery handler.
type FiredTrigger struct {
	ID      string
	FireAt  time.Time
	Payload []byte
}
