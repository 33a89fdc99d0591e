package blocking

import "errors"

// Failure taxonomy. None of these reach the host through the scheduling,
// delivery or reconciliation paths; they are logged and counted instead.
var (
	// ErrSchedulingFailure marks a single trigger the wake scheduler refused.
	ErrSchedulingFailure = errors.New("scheduling failure")

	// ErrShieldUnavailable marks a shield that is not authorized, has no
	// targets, or failed to start or stop.
	ErrShieldUnavailable = errors.New("shield unavailable")

	// ErrStalePayload marks a delivered trigger whose window has elapsed or
	// whose task is not the active one.
	ErrStalePayload = errors.New("stale payload")

	// ErrStateDrift marks a difference between desired and actual state.
	ErrStateDrift = errors.New("state drift")

	// ErrMalformedWindow marks a window whose bounds cannot be combined.
	ErrMalformedWindow = errors.New("malformed blocking window")

	// ErrMalformedPayload marks a trigger payload that cannot be decoded.
	ErrMalformedPayload = errors.New("malformed trigger payload")
)
