package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/core/effects"
	"github.com/example/focusguard/internal/ports/primary"
)

// CancelForTask removes the task's triggers and, when the task holds the
// session, stops the shield. Used when a task is completed, skipped, deleted
// or loses its window.
func (o *Orchestrator) CancelForTask(ctx context.Context, taskID string, now time.Time) (*primary.CancelReport, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := o.loggerFor(ctx)
	report := &primary.CancelReport{TaskID: taskID}

	ids := blocking.TriggerIDsForTask(taskID)
	cancel := effects.WakeEffect{Operation: effects.WakeCancel, IDs: ids}
	if err := o.executor.Execute(ctx, []effects.Effect{cancel}); err != nil {
		logger.WarnContext(ctx, "failed to cancel task triggers", "task_id", taskID, "error", err)
	} else {
		report.Cancelled = ids
	}

	if o.controller.State().TaskID == taskID {
		outcome, err := o.controller.Deactivate(ctx, now, "task cancelled")
		if err != nil {
			logger.WarnContext(ctx, "failed to end session for cancelled task", "task_id", taskID, "error", err)
		}
		report.Deactivated = outcome == primary.OutcomeDeactivated
	}

	return report, nil
}

// SetAutoBlocking persists the toggle. Turning it off cancels every pending
// trigger of the engine and ends the active session; turning it on schedules
// nothing until the next Refresh.
func (o *Orchestrator) SetAutoBlocking(ctx context.Context, enabled bool, now time.Time) error {
	release, err := o.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := o.settings.SetAutoBlockingEnabled(ctx, enabled); err != nil {
		return fmt.Errorf("failed to save auto blocking setting: %w", err)
	}

	logger := o.loggerFor(ctx)
	logger.InfoContext(ctx, "auto blocking toggled", "enabled", enabled)
	if enabled {
		return nil
	}

	pending, err := o.wake.Pending(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to list pending triggers", "error", err)
	} else if owned := blocking.OwnedTriggers(pending); len(owned) > 0 {
		cancel := effects.WakeEffect{Operation: effects.WakeCancel, IDs: owned}
		if err := o.executor.Execute(ctx, []effects.Effect{cancel}); err != nil {
			logger.WarnContext(ctx, "failed to cancel triggers", "count", len(owned), "error", err)
		}
	}

	if _, err := o.controller.Deactivate(ctx, now, "auto blocking disabled"); err != nil {
		return err
	}
	return nil
}
