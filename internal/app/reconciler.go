package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/ports/secondary"
)

// Reconcile applies at most one transition moving the session towards the
// state the tasks call for at now. Calling it again without changes is a no-op.
func (o *Orchestrator) Reconcile(ctx context.Context, tasks []*primary.Task, now time.Time) (*primary.ReconcileReport, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return o.reconcileLocked(ctx, tasks, now)
}

// ReconcileFromSource reads today's tasks and reconciles against them.
func (o *Orchestrator) ReconcileFromSource(ctx context.Context, now time.Time) (*primary.ReconcileReport, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	tasks, err := o.loadTasks(ctx, blocking.Day(now))
	if err != nil {
		return nil, err
	}
	return o.reconcileLocked(ctx, tasks, now)
}

// Refresh reads today's tasks, reschedules their triggers and reconciles.
func (o *Orchestrator) Refresh(ctx context.Context, now time.Time) (*primary.RefreshReport, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	tasks, err := o.loadTasks(ctx, blocking.Day(now))
	if err != nil {
		return nil, err
	}

	schedule, err := o.scheduleLocked(ctx, tasks, now)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule: %w", err)
	}
	reconcile, err := o.reconcileLocked(ctx, tasks, now)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}

	return &primary.RefreshReport{Schedule: schedule, Reconcile: reconcile}, nil
}

func (o *Orchestrator) reconcileLocked(ctx context.Context, tasks []*primary.Task, now time.Time) (*primary.ReconcileReport, error) {
	logger := o.loggerFor(ctx)

	enabled, err := o.settings.AutoBlockingEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read auto blocking setting: %w", err)
	}

	core := toCoreTasks(tasks)
	before := o.controller.State()
	report := &primary.ReconcileReport{
		Enabled: enabled,
		Before:  toBlockState(before),
		Outcome: primary.OutcomeNone,
	}
	if desired := blocking.DesiredState(core, now, enabled); desired.Blocking {
		report.DesiredTaskID = desired.Window.TaskID
	}

	transition := blocking.PlanConvergence(before, blocking.InWindow(core, now), enabled)
	report.Transition = string(transition.Kind)

	switch transition.Kind {
	case blocking.TransitionActivate:
		report.Outcome = o.activate(ctx, transition.Window, now)
	case blocking.TransitionDeactivate:
		reason := "no window in progress"
		if !enabled {
			reason = "auto blocking disabled"
		}
		report.Outcome, _ = o.controller.Deactivate(ctx, now, reason)
	case blocking.TransitionHandover:
		report.Outcome, _ = o.controller.Handover(ctx, transition.Window, now)
	case blocking.TransitionNone:
		if enabled && !before.Active() && !before.Transient() {
			report.StrayShieldStop = o.stopStrayShield(ctx, now)
		}
		return report, nil
	}

	o.metrics.DriftCorrected(ctx, report.Transition)
	logger.InfoContext(ctx, "state drift corrected",
		"transition", report.Transition,
		"outcome", report.Outcome,
		"actual", before.TaskID,
		"desired", report.DesiredTaskID,
		"error", blocking.ErrStateDrift)

	return report, nil
}

// stopStrayShield stops a shield that reports itself engaged while the
// controller is idle. Shields that cannot be probed are left alone, and so
// is every shield while auto blocking is off.
func (o *Orchestrator) stopStrayShield(ctx context.Context, now time.Time) bool {
	probe, ok := o.shield.(secondary.ShieldProbe)
	if !ok {
		return false
	}
	engaged, err := probe.Engaged(ctx)
	if err != nil {
		o.loggerFor(ctx).DebugContext(ctx, "failed to probe shield", "error", err)
		return false
	}
	if !engaged {
		return false
	}
	if err := o.controller.StopStray(ctx, now); err != nil {
		o.loggerFor(ctx).WarnContext(ctx, "failed to stop stray shield", "error", err)
		return false
	}
	return true
}
