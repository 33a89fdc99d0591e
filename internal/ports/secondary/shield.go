package secondary

import "context"

// ShieldService enables and disables blocking over an externally configured
// set of targets. Both calls are idempotent.
type ShieldService interface {
	// StartBlocking turns the shield on.
	StartBlocking(ctx context.Context) error

	// StopBlocking turns the shield off.
	StopBlocking(ctx context.Context) error

	// TargetsConfigured reports whether blocking is authorized and at least
	// one target is selected.
	TargetsConfigured(ctx context.Context) (bool, error)
}

// ShieldProbe is implemented by shields whose on/off state outlives the
// process, so reconciliation can clear a shield left engaged by a previous run.
type ShieldProbe interface {
	// Engaged reports whether the shield is currently on.
	Engaged(ctx context.Context) (bool, error)
}
