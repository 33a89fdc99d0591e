// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which hosts drive the application.
package primary

import (
	"context"
	"time"
)

// BlockingService defines the primary port of the focus blocking orchestrator.
// Mutating operations are serialized: a call waits for any in-flight call to
// finish, or returns the context's error while waiting.
type BlockingService interface {
	// ScheduleForTasks replaces the wake triggers for today's tasks and
	// activates a window already in progress.
	ScheduleForTasks(ctx context.Context, tasks []*Task, now time.Time) (*ScheduleReport, error)

	// Reconcile converges the active session on the state the tasks call for.
	Reconcile(ctx context.Context, tasks []*Task, now time.Time) (*ReconcileReport, error)

	// ReconcileFromSource reads today's tasks from the task source, then reconciles.
	ReconcileFromSource(ctx context.Context, now time.Time) (*ReconcileReport, error)

	// Refresh reads today's tasks, reschedules them and reconciles.
	// Hosts call it when entering the foreground and after task mutations.
	Refresh(ctx context.Context, now time.Time) (*RefreshReport, error)

	// HandleWake applies a delivered wake trigger.
	HandleWake(ctx context.Context, triggerID string, payload []byte, now time.Time) (*DeliveryReport, error)

	// CancelForTask removes a task's triggers and ends its session if active.
	CancelForTask(ctx context.Context, taskID string, now time.Time) (*CancelReport, error)

	// SetAutoBlocking persists the global toggle. Turning it off clears all
	// triggers and ends any active session.
	SetAutoBlocking(ctx context.Context, enabled bool, now time.Time) error

	// AutoBlockingEnabled returns the global toggle.
	AutoBlockingEnabled(ctx context.Context) (bool, error)

	// State returns a snapshot of the active session.
	State(ctx context.Context) BlockState

	// PendingTriggers lists the engine's triggers that have not fired yet.
	PendingTriggers(ctx context.Context) ([]string, error)

	// RecentEvents returns the newest block events first.
	RecentEvents(ctx context.Context, limit int) ([]*BlockEvent, error)
}

// Session phases as reported by State.
const (
	PhaseIdle     = "idle"
	PhaseStarting = "starting"
	PhaseBlocking = "blocking"
	PhaseStopping = "stopping"
)

// Outcome names what a controller call did.
type Outcome string

const (
	OutcomeActivated         Outcome = "activated"
	OutcomeAlreadyActive     Outcome = "already_active"
	OutcomeHeld              Outcome = "held"
	OutcomeStale             Outcome = "stale"
	OutcomeBusy              Outcome = "busy"
	OutcomeDeactivated       Outcome = "deactivated"
	OutcomeAlreadyIdle       Outcome = "already_idle"
	OutcomeHandedOver        Outcome = "handed_over"
	OutcomeFailed            Outcome = "failed"
	OutcomeShieldUnavailable Outcome = "shield_unavailable"
	OutcomeDisabled          Outcome = "disabled"
	OutcomeMalformed         Outcome = "malformed"
	OutcomeNone              Outcome = "none"
)

// BlockState is a snapshot of the active session.
type BlockState struct {
	Phase     string
	TaskID    string // empty when idle
	Title     string
	EndTime   time.Time
	LastError string
}

// Active reports whether a session is active.
func (s BlockState) Active() bool { return s.TaskID != "" }

// ScheduleReport describes one scheduling run.
type ScheduleReport struct {
	Disabled          bool
	ShieldUnavailable bool
	Cancelled         []string
	Scheduled         []string
	Activations       []Activation
	Failures          []SchedulingFailure
	Skipped           []SkippedTask
}

// Activation records an immediate activation attempt for a window in progress.
type Activation struct {
	TaskID  string
	Until   time.Time
	Outcome Outcome
}

// SchedulingFailure records a task whose triggers could not be scheduled.
type SchedulingFailure struct {
	TaskID string
	Error  string
}

// SkippedTask records a task that produced no triggers.
type SkippedTask struct {
	TaskID string
	Reason string
}

// ReconcileReport describes one reconciliation pass.
type ReconcileReport struct {
	Enabled         bool
	DesiredTaskID   string // empty when the desired state is idle
	Before          BlockState
	Transition      string // none, activate, deactivate, handover
	Outcome         Outcome
	StrayShieldStop bool // a shield left engaged by an earlier process was stopped
}

// RefreshReport combines the scheduling and reconciliation of a refresh.
type RefreshReport struct {
	Schedule  *ScheduleReport
	Reconcile *ReconcileReport
}

// DeliveryReport describes the handling of one wake trigger.
type DeliveryReport struct {
	TriggerID string
	Kind      string
	TaskID    string
	Outcome   Outcome
	Reason    string
}

// BlockEvent is one audit entry of a blocking transition.
type BlockEvent struct {
	ID         string
	Kind       string
	TaskID     string
	Detail     string
	OccurredAt time.Time
}

// CancelReport describes a task cancellation.
type CancelReport struct {
	TaskID      string
	Cancelled   []string
	Deactivated bool
}
