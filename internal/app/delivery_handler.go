package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ports/primary"
)

// HandleWake applies a delivered trigger. Payloads that no longer match
// reality (late start, end for a session that is gone) are dropped, so
// duplicate and out-of-order deliveries are harmless.
func (o *Orchestrator) HandleWake(ctx context.Context, triggerID string, payload []byte, now time.Time) (*primary.DeliveryReport, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := o.loggerFor(ctx)
	report := &primary.DeliveryReport{TriggerID: triggerID}

	p, err := blocking.DecodePayload(payload)
	if err != nil {
		logger.WarnContext(ctx, "dropping malformed trigger payload", "trigger_id", triggerID, "error", err)
		report.Outcome = primary.OutcomeMalformed
		report.Reason = err.Error()
		return report, nil
	}
	report.Kind = string(p.Kind)
	report.TaskID = p.TaskID

	enabled, err := o.settings.AutoBlockingEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read auto blocking setting: %w", err)
	}
	if !enabled {
		report.Outcome = primary.OutcomeDisabled
		report.Reason = "auto blocking disabled"
		return report, nil
	}

	switch p.Kind {
	case blocking.KindStart:
		o.deliverStart(ctx, p, now, report)
	case blocking.KindEnd:
		o.deliverEnd(ctx, p, now, report)
	}

	logger.InfoContext(ctx, "trigger delivered",
		"trigger_id", triggerID,
		"kind", p.Kind,
		"task_id", p.TaskID,
		"outcome", report.Outcome)

	return report, nil
}

func (o *Orchestrator) deliverStart(ctx context.Context, p blocking.Payload, now time.Time, report *primary.DeliveryReport) {
	if g := blocking.CanDeliverStart(blocking.StartDeliveryContext{Payload: p, Now: now}); !g.Allowed {
		o.dropStale(ctx, p, g.Reason, now, report)
		return
	}

	w := blocking.Window{TaskID: p.TaskID, Title: p.Title, Start: now, End: p.WindowEnd}
	report.Outcome = o.activate(ctx, w, now)
}

func (o *Orchestrator) deliverEnd(ctx context.Context, p blocking.Payload, now time.Time, report *primary.DeliveryReport) {
	active := o.controller.State()
	if g := blocking.CanDeliverEnd(blocking.EndDeliveryContext{Payload: p, ActiveTaskID: active.TaskID}); !g.Allowed {
		o.dropStale(ctx, p, g.Reason, now, report)
		return
	}

	// Another window may already be running; keep the shield on for it.
	tasks, err := o.loadTasks(ctx, blocking.Day(now))
	if err != nil {
		o.loggerFor(ctx).DebugContext(ctx, "task source unavailable at window end", "error", err)
	} else if next := blocking.InWindow(toCoreTasks(tasks), now, p.TaskID); len(next) > 0 {
		report.Outcome, _ = o.controller.Handover(ctx, next[0], now)
		return
	}

	report.Outcome, _ = o.controller.Deactivate(ctx, now, "window ended")
}

func (o *Orchestrator) dropStale(ctx context.Context, p blocking.Payload, reason string, now time.Time, report *primary.DeliveryReport) {
	o.metrics.StalePayload(ctx, string(p.Kind))
	o.loggerFor(ctx).InfoContext(ctx, "dropping stale trigger",
		"kind", p.Kind,
		"task_id", p.TaskID,
		"reason", reason,
		"error", blocking.ErrStalePayload)
	o.events.record(ctx, EventStalePayload, p.TaskID, string(p.Kind)+": "+reason, now)
	report.Outcome = primary.OutcomeStale
	report.Reason = reason
}
