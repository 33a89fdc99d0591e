package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/core/effects"
	"github.com/example/focusguard/internal/ports/primary"
)

// ScheduleForTasks replaces the engine's wake triggers with those the given
// tasks call for. Windows already in progress are activated immediately and
// only get an end trigger. A task whose triggers fail is logged and counted;
// the other tasks are still scheduled.
func (o *Orchestrator) ScheduleForTasks(ctx context.Context, tasks []*primary.Task, now time.Time) (*primary.ScheduleReport, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return o.scheduleLocked(ctx, tasks, now)
}

func (o *Orchestrator) scheduleLocked(ctx context.Context, tasks []*primary.Task, now time.Time) (*primary.ScheduleReport, error) {
	logger := o.loggerFor(ctx)

	enabled, err := o.settings.AutoBlockingEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read auto blocking setting: %w", err)
	}

	report := &primary.ScheduleReport{}
	if !enabled {
		// Triggers were cleared when the toggle went off.
		report.Disabled = true
		if _, err := o.controller.Deactivate(ctx, now, "auto blocking disabled"); err != nil {
			logger.WarnContext(ctx, "failed to end session while disabled", "error", err)
		}
		return report, nil
	}

	targets, err := o.shield.TargetsConfigured(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to query shield targets", "error", err)
		targets = false
	}

	pending, err := o.wake.Pending(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to list pending triggers, cancelling by task id", "error", err)
		pending = nil
		for _, t := range tasks {
			if t != nil {
				pending = append(pending, blocking.TriggerIDsForTask(t.ID)...)
			}
		}
	}

	plan, err := blocking.GenerateSchedulePlan(blocking.SchedulePlanInput{
		Tasks:             toCoreTasks(tasks),
		Now:               now,
		Enabled:           enabled,
		TargetsConfigured: targets,
		PendingTriggerIDs: pending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to plan schedule: %w", err)
	}

	if len(plan.Cancel.IDs) > 0 {
		if err := o.executor.Execute(ctx, []effects.Effect{plan.Cancel}); err != nil {
			logger.WarnContext(ctx, "failed to cancel previous triggers", "count", len(plan.Cancel.IDs), "error", err)
		} else {
			report.Cancelled = plan.Cancel.IDs
		}
	}

	if plan.ShieldUnavailable {
		report.ShieldUnavailable = true
		logger.InfoContext(ctx, "shield has no targets, nothing scheduled", "error", blocking.ErrShieldUnavailable)
		return report, nil
	}

	for _, s := range plan.Skipped {
		report.Skipped = append(report.Skipped, primary.SkippedTask{TaskID: s.TaskID, Reason: s.Reason})
	}
	if err := o.executor.Execute(ctx, plan.SkipEffects()); err != nil {
		logger.DebugContext(ctx, "failed to log skipped tasks", "error", err)
	}

	for _, w := range plan.Activate {
		outcome, _ := o.controller.Activate(ctx, w, now)
		report.Activations = append(report.Activations, primary.Activation{
			TaskID:  w.TaskID,
			Until:   w.End,
			Outcome: outcome,
		})
	}

	for _, tt := range plan.Tasks {
		if err := o.executor.Execute(ctx, []effects.Effect{tt.Composite()}); err != nil {
			logger.WarnContext(ctx, "failed to schedule triggers",
				"task_id", tt.TaskID,
				"error", fmt.Errorf("%w: %w", blocking.ErrSchedulingFailure, err))
			o.metrics.SchedulingFailure(ctx)
			report.Failures = append(report.Failures, primary.SchedulingFailure{TaskID: tt.TaskID, Error: err.Error()})

			// Do not leave a start behind without its end.
			cancel := effects.WakeEffect{Operation: effects.WakeCancel, IDs: tt.IDs()}
			if err := o.executor.Execute(ctx, []effects.Effect{cancel}); err != nil {
				logger.DebugContext(ctx, "failed to clean up partial triggers", "task_id", tt.TaskID, "error", err)
			}
			continue
		}
		report.Scheduled = append(report.Scheduled, tt.IDs()...)
	}

	o.metrics.TriggersScheduled(ctx, len(report.Scheduled))
	logger.InfoContext(ctx, "schedule updated",
		"scheduled", len(report.Scheduled),
		"cancelled", len(report.Cancelled),
		"activations", len(report.Activations),
		"failures", len(report.Failures))

	return report, nil
}
