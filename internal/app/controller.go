package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/ports/secondary"
	"github.com/example/focusguard/internal/telemetry"
)

// Block event kinds written to the event log.
const (
	EventActivated    = "activated"
	EventDeactivated  = "deactivated"
	EventHandover     = "handover"
	EventStartFailed  = "start_failed"
	EventStopFailed   = "stop_failed"
	EventStalePayload = "stale_payload"
	EventStrayStop    = "stray_stop"
	EventAdopted      = "adopted"
)

// BlockingController owns the in-memory session and is the only caller of
// the shield. The lock is released while a shield call is in flight so the
// Starting and Stopping phases are observable; requests arriving meanwhile
// are answered with OutcomeBusy.
type BlockingController struct {
	mu      sync.Mutex
	state   blocking.ActiveState
	shield  secondary.ShieldService
	events  *eventRecorder
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewBlockingController creates an idle controller.
func NewBlockingController(shield secondary.ShieldService, events secondary.BlockEventLog, metrics *telemetry.Metrics, logger *slog.Logger) *BlockingController {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "controller")
	return &BlockingController{
		state:   blocking.ActiveState{Phase: blocking.PhaseIdle},
		shield:  shield,
		events:  &eventRecorder{log: events, logger: logger},
		metrics: metrics,
		logger:  logger,
	}
}

// State returns a copy of the session.
func (c *BlockingController) State() blocking.ActiveState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate starts the shield for w unless a session is already active.
// An active session is never preempted.
func (c *BlockingController) Activate(ctx context.Context, w blocking.Window, now time.Time) (primary.Outcome, error) {
	c.mu.Lock()
	switch blocking.DecideActivate(c.state, w.TaskID, w.End, now) {
	case blocking.ActivateAlreadyActive:
		c.mu.Unlock()
		return primary.OutcomeAlreadyActive, nil
	case blocking.ActivateHeld:
		holder := c.state.TaskID
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "session held by another task", "task_id", w.TaskID, "holder", holder)
		return primary.OutcomeHeld, nil
	case blocking.ActivateStale:
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "activation window already over", "task_id", w.TaskID, "until", w.End)
		return primary.OutcomeStale, nil
	case blocking.ActivateBusy:
		c.mu.Unlock()
		return primary.OutcomeBusy, nil
	}
	c.state = blocking.ActiveState{Phase: blocking.PhaseStarting, PendingTaskID: w.TaskID}
	c.mu.Unlock()

	if c.engaged(ctx) {
		return c.adopt(ctx, w, now), nil
	}

	err := c.shield.StartBlocking(ctx)

	c.mu.Lock()
	if err != nil {
		c.state = blocking.ActiveState{Phase: blocking.PhaseIdle, LastError: err.Error()}
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "failed to start blocking", "task_id", w.TaskID, "error", err)
		c.events.record(ctx, EventStartFailed, w.TaskID, err.Error(), now)
		return primary.OutcomeFailed, fmt.Errorf("%w: failed to start blocking for task %s: %w", blocking.ErrShieldUnavailable, w.TaskID, err)
	}
	c.state = blocking.ActiveState{
		TaskID:  w.TaskID,
		Title:   w.Title,
		EndTime: w.End,
		Phase:   blocking.PhaseBlocking,
	}
	c.mu.Unlock()

	c.metrics.Transition(ctx, string(blocking.TransitionActivate))
	c.logger.InfoContext(ctx, "blocking started", "task_id", w.TaskID, "title", w.Title, "until", w.End)
	c.events.record(ctx, EventActivated, w.TaskID, "until "+w.End.Format(time.RFC3339), now)
	return primary.OutcomeActivated, nil
}

// engaged reports whether a probeable shield is already on. Errors from the
// probe count as not engaged so the shield gets started.
func (c *BlockingController) engaged(ctx context.Context) bool {
	probe, ok := c.shield.(secondary.ShieldProbe)
	if !ok {
		return false
	}
	on, err := probe.Engaged(ctx)
	if err != nil {
		c.logger.DebugContext(ctx, "failed to probe shield", "error", err)
		return false
	}
	return on
}

// adopt takes over a shield left on by an earlier process for w without
// starting it again.
func (c *BlockingController) adopt(ctx context.Context, w blocking.Window, now time.Time) primary.Outcome {
	c.mu.Lock()
	c.state = blocking.ActiveState{
		TaskID:  w.TaskID,
		Title:   w.Title,
		EndTime: w.End,
		Phase:   blocking.PhaseBlocking,
	}
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "adopted engaged shield", "task_id", w.TaskID, "until", w.End)
	c.events.record(ctx, EventAdopted, w.TaskID, "until "+w.End.Format(time.RFC3339), now)
	return primary.OutcomeActivated
}

// Deactivate stops the shield and clears the session. A failed stop leaves
// the session in place with LastError set so a later pass retries it.
func (c *BlockingController) Deactivate(ctx context.Context, now time.Time, reason string) (primary.Outcome, error) {
	c.mu.Lock()
	if c.state.Transient() {
		c.mu.Unlock()
		return primary.OutcomeBusy, nil
	}
	if !c.state.Active() {
		c.mu.Unlock()
		return primary.OutcomeAlreadyIdle, nil
	}
	prev := c.state
	c.state.Phase = blocking.PhaseStopping
	c.mu.Unlock()

	err := c.shield.StopBlocking(ctx)

	c.mu.Lock()
	if err != nil {
		prev.LastError = err.Error()
		c.state = prev
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "failed to stop blocking", "task_id", prev.TaskID, "error", err)
		c.events.record(ctx, EventStopFailed, prev.TaskID, err.Error(), now)
		return primary.OutcomeFailed, fmt.Errorf("%w: failed to stop blocking for task %s: %w", blocking.ErrShieldUnavailable, prev.TaskID, err)
	}
	c.state = blocking.ActiveState{Phase: blocking.PhaseIdle}
	c.mu.Unlock()

	c.metrics.Transition(ctx, string(blocking.TransitionDeactivate))
	c.logger.InfoContext(ctx, "blocking stopped", "task_id", prev.TaskID, "reason", reason)
	c.events.record(ctx, EventDeactivated, prev.TaskID, reason, now)
	return primary.OutcomeDeactivated, nil
}

// Handover moves an active session to another task without touching the
// shield, which stays on.
func (c *BlockingController) Handover(ctx context.Context, w blocking.Window, now time.Time) (primary.Outcome, error) {
	c.mu.Lock()
	switch {
	case c.state.Transient():
		c.mu.Unlock()
		return primary.OutcomeBusy, nil
	case !c.state.Active():
		c.mu.Unlock()
		return primary.OutcomeAlreadyIdle, nil
	case c.state.TaskID == w.TaskID:
		c.mu.Unlock()
		return primary.OutcomeAlreadyActive, nil
	case !w.End.After(now):
		c.mu.Unlock()
		return primary.OutcomeStale, nil
	}
	from := c.state.TaskID
	c.state = blocking.ActiveState{
		TaskID:  w.TaskID,
		Title:   w.Title,
		EndTime: w.End,
		Phase:   blocking.PhaseBlocking,
	}
	c.mu.Unlock()

	c.metrics.Transition(ctx, string(blocking.TransitionHandover))
	c.logger.InfoContext(ctx, "session handed over", "from", from, "task_id", w.TaskID, "until", w.End)
	c.events.record(ctx, EventHandover, w.TaskID, "from "+from, now)
	return primary.OutcomeHandedOver, nil
}

// StopStray stops a shield that is on while no session is active, which
// happens when a previous process exited mid-session.
func (c *BlockingController) StopStray(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	if c.state.Active() || c.state.Transient() {
		c.mu.Unlock()
		return nil
	}
	c.state.Phase = blocking.PhaseStopping
	c.mu.Unlock()

	err := c.shield.StopBlocking(ctx)

	c.mu.Lock()
	c.state = blocking.ActiveState{Phase: blocking.PhaseIdle}
	if err != nil {
		c.state.LastError = err.Error()
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: failed to stop stray shield: %w", blocking.ErrShieldUnavailable, err)
	}
	c.logger.InfoContext(ctx, "stray shield stopped")
	c.events.record(ctx, EventStrayStop, "", "shield engaged without a session", now)
	return nil
}

// eventRecorder appends block events. Failures are logged and swallowed:
// the event log is an audit trail, not state.
type eventRecorder struct {
	log    secondary.BlockEventLog
	logger *slog.Logger
}

func (r *eventRecorder) record(ctx context.Context, kind, taskID, detail string, at time.Time) {
	if r == nil || r.log == nil {
		return
	}
	err := r.log.Append(ctx, &secondary.BlockEventRecord{
		ID:         uuid.NewString(),
		Kind:       kind,
		TaskID:     taskID,
		Detail:     detail,
		OccurredAt: at,
	})
	if err != nil {
		r.logger.DebugContext(ctx, "failed to append block event", "kind", kind, "error", err)
	}
}
