package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ctxutil"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/ports/secondary"
	"github.com/example/focusguard/internal/telemetry"
)

// errNoTaskSource is returned by operations that must read tasks themselves
// when the orchestrator was built without a task source.
var errNoTaskSource = errors.New("no task source configured")

// OrchestratorDeps holds the collaborators of the orchestrator.
// Events and Metrics are optional.
type OrchestratorDeps struct {
	Tasks    secondary.TaskSource
	Shield   secondary.ShieldService
	Wake     secondary.WakeScheduler
	Settings secondary.SettingsStore
	Events   secondary.BlockEventLog
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
}

// Orchestrator implements the BlockingService interface.
// The gate admits one mutating operation at a time; each runs to completion
// before the next starts.
type Orchestrator struct {
	gate       *semaphore.Weighted
	controller *BlockingController
	tasks      secondary.TaskSource
	shield     secondary.ShieldService
	wake       secondary.WakeScheduler
	settings   secondary.SettingsStore
	executor   EffectExecutor
	events     *eventRecorder
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

var _ primary.BlockingService = (*Orchestrator)(nil)

// NewOrchestrator creates a new Orchestrator with injected dependencies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gate:       semaphore.NewWeighted(1),
		controller: NewBlockingController(deps.Shield, deps.Events, deps.Metrics, logger),
		tasks:      deps.Tasks,
		shield:     deps.Shield,
		wake:       deps.Wake,
		settings:   deps.Settings,
		executor:   NewEffectExecutor(deps.Wake, logger.With("component", "executor")),
		events:     &eventRecorder{log: deps.Events, logger: logger},
		metrics:    deps.Metrics,
		logger:     logger.With("component", "orchestrator"),
	}
}

// State returns a snapshot of the active session.
func (o *Orchestrator) State(ctx context.Context) primary.BlockState {
	return toBlockState(o.controller.State())
}

// AutoBlockingEnabled returns the global toggle.
func (o *Orchestrator) AutoBlockingEnabled(ctx context.Context) (bool, error) {
	enabled, err := o.settings.AutoBlockingEnabled(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read auto blocking setting: %w", err)
	}
	return enabled, nil
}

// PendingTriggers lists the pending triggers in the engine's namespace.
func (o *Orchestrator) PendingTriggers(ctx context.Context) ([]string, error) {
	ids, err := o.wake.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending triggers: %w", err)
	}
	return blocking.OwnedTriggers(ids), nil
}

// RecentEvents returns the newest block events first. Without an event log
// there is nothing to report.
func (o *Orchestrator) RecentEvents(ctx context.Context, limit int) ([]*primary.BlockEvent, error) {
	if o.events.log == nil {
		return nil, nil
	}
	records, err := o.events.log.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read block events: %w", err)
	}
	events := make([]*primary.BlockEvent, len(records))
	for i, r := range records {
		events[i] = &primary.BlockEvent{
			ID:         r.ID,
			Kind:       r.Kind,
			TaskID:     r.TaskID,
			Detail:     r.Detail,
			OccurredAt: r.OccurredAt,
		}
	}
	return events, nil
}

func (o *Orchestrator) acquire(ctx context.Context) (func(), error) {
	if err := o.gate.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire orchestrator: %w", err)
	}
	return func() { o.gate.Release(1) }, nil
}

func (o *Orchestrator) loggerFor(ctx context.Context) *slog.Logger {
	if trigger := ctxutil.TriggerFromContext(ctx); trigger != "" {
		return o.logger.With("trigger", trigger)
	}
	return o.logger
}

func (o *Orchestrator) loadTasks(ctx context.Context, day string) ([]*primary.Task, error) {
	if o.tasks == nil {
		return nil, errNoTaskSource
	}
	records, err := o.tasks.TasksForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for %s: %w", day, err)
	}
	tasks := make([]*primary.Task, len(records))
	for i, r := range records {
		tasks[i] = recordToTask(r)
	}
	return tasks, nil
}

// activate checks the shield can block anything before asking the controller.
func (o *Orchestrator) activate(ctx context.Context, w blocking.Window, now time.Time) primary.Outcome {
	logger := o.loggerFor(ctx)
	ok, err := o.shield.TargetsConfigured(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to query shield targets", "error", err)
	}
	if err != nil || !ok {
		logger.InfoContext(ctx, "shield has no targets, not activating", "task_id", w.TaskID)
		return primary.OutcomeShieldUnavailable
	}
	outcome, _ := o.controller.Activate(ctx, w, now)
	return outcome
}

func toCoreTasks(tasks []*primary.Task) []blocking.Task {
	core := make([]blocking.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		core = append(core, blocking.Task{
			ID:                t.ID,
			Title:             t.Title,
			Date:              t.Date,
			WindowStart:       t.WindowStart,
			WindowEnd:         t.WindowEnd,
			BlockingRequested: t.BlockingRequested,
			Status:            t.Status,
		})
	}
	return core
}

func toBlockState(s blocking.ActiveState) primary.BlockState {
	return primary.BlockState{
		Phase:     string(s.Phase),
		TaskID:    s.TaskID,
		Title:     s.Title,
		EndTime:   s.EndTime,
		LastError: s.LastError,
	}
}
