// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "time"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Wake operations.
const (
	WakeSchedule = "schedule"
	WakeCancel   = "cancel"
)

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string // "debug", "info", "warn", "error"
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// WakeEffect represents a wake scheduler operation.
type WakeEffect struct {
	Operation string    // WakeSchedule or WakeCancel
	IDs       []string  // one id for schedule, any number for cancel
	FireAt    time.Time // schedule only
	Payload   []byte    // schedule only
}

func (e WakeEffect) EffectType() string { return "wake" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }
