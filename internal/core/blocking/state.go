package blocking

import "time"

// Phase is the controller's position in the Idle/Blocking state machine.
// Starting and Stopping are transient while a shield call is in flight.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseStarting Phase = "starting"
	PhaseBlocking Phase = "blocking"
	PhaseStopping Phase = "stopping"
)

// ActiveState is the in-memory record of the blocking session.
// TaskID is set iff a session is active (Blocking or Stopping).
type ActiveState struct {
	TaskID        string
	Title         string
	EndTime       time.Time
	Phase         Phase
	PendingTaskID string // task being started while Phase is Starting
	LastError     string
}

// Active reports whether a blocking session holds the shield.
func (s ActiveState) Active() bool {
	return s.TaskID != ""
}

// Transient reports whether a shield call is in flight.
func (s ActiveState) Transient() bool {
	return s.Phase == PhaseStarting || s.Phase == PhaseStopping
}

// ActivateDecision is the result of evaluating an activation request.
type ActivateDecision int

const (
	// ActivateProceed means the controller should start the shield.
	ActivateProceed ActivateDecision = iota
	// ActivateAlreadyActive means the same task already holds the session.
	ActivateAlreadyActive
	// ActivateHeld means a different task holds the session; there is no
	// preemption, the holder keeps it until its own end.
	ActivateHeld
	// ActivateStale means the requested end is not after now.
	ActivateStale
	// ActivateBusy means a shield call is in flight.
	ActivateBusy
)

// DecideActivate evaluates an activation of taskID until the given instant.
func DecideActivate(state ActiveState, taskID string, until, now time.Time) ActivateDecision {
	if state.Transient() {
		return ActivateBusy
	}
	if state.Active() {
		if state.TaskID == taskID {
			return ActivateAlreadyActive
		}
		return ActivateHeld
	}
	if !until.After(now) {
		return ActivateStale
	}
	return ActivateProceed
}
