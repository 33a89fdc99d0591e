// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// Trigger sources recorded on the context by hosts.
const (
	TriggerForeground = "foreground"
	TriggerMutation   = "mutation"
	TriggerWake       = "wake"
	TriggerTimer      = "timer"
)

// TriggerKey is the context key for the trigger source.
// Exported so it can be used consistently across packages.
type TriggerKey struct{}

// WithTrigger returns a context recording what caused the current operation.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, TriggerKey{}, trigger)
}

// TriggerFromContext returns the trigger source from context, or empty string if not set.
func TriggerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(TriggerKey{}).(string); ok {
		return v
	}
	return ""
}
