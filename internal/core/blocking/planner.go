package blocking

import (
	"time"

	"github.com/example/focusguard/internal/core/effects"
)

// SchedulePlanInput contains the inputs needed to generate a schedule plan.
// All values are pre-fetched by the caller - no I/O in the planner.
type SchedulePlanInput struct {
	Tasks             []Task
	Now               time.Time
	Enabled           bool
	TargetsConfigured bool
	PendingTriggerIDs []string // as reported by the wake scheduler
}

// TaskTriggers holds the trigger effects for one task. They succeed or fail
// together so a task never keeps a start without its end.
type TaskTriggers struct {
	TaskID  string
	Effects []effects.WakeEffect
}

// IDs returns the trigger ids scheduled by this task's effects.
func (t TaskTriggers) IDs() []string {
	var ids []string
	for _, e := range t.Effects {
		ids = append(ids, e.IDs...)
	}
	return ids
}

// Composite wraps the task's effects for execution.
func (t TaskTriggers) Composite() effects.CompositeEffect {
	c := effects.CompositeEffect{}
	for _, e := range t.Effects {
		c.Effects = append(c.Effects, e)
	}
	return c
}

// SkippedTask records why a task produced no triggers.
type SkippedTask struct {
	TaskID string
	Reason string
}

// SchedulePlan represents the planned effects of one scheduling run.
// Cancel must be executed before any of Tasks.
type SchedulePlan struct {
	Disabled          bool // auto blocking is off: nothing to do, force idle
	ShieldUnavailable bool // no targets: clear triggers, schedule nothing
	Cancel            effects.WakeEffect
	Activate          []Window // windows already in progress, tie-break order
	Tasks             []TaskTriggers
	Skipped           []SkippedTask
}

// TriggerCount returns the number of triggers the plan schedules.
func (p SchedulePlan) TriggerCount() int {
	n := 0
	for _, t := range p.Tasks {
		n += len(t.Effects)
	}
	return n
}

// SkipEffects returns one debug log effect per skipped task.
func (p SchedulePlan) SkipEffects() []effects.Effect {
	result := make([]effects.Effect, 0, len(p.Skipped))
	for _, s := range p.Skipped {
		result = append(result, effects.LogEffect{
			Level:   "debug",
			Message: "task not scheduled",
			Fields:  map[string]any{"task_id": s.TaskID, "reason": s.Reason},
		})
	}
	return result
}

// Effects returns all effects as a flat slice, cancellation first.
func (p SchedulePlan) Effects() []effects.Effect {
	var result []effects.Effect
	if len(p.Cancel.IDs) > 0 {
		result = append(result, p.Cancel)
	}
	for _, t := range p.Tasks {
		for _, e := range t.Effects {
			result = append(result, e)
		}
	}
	return result
}

// GenerateSchedulePlan turns the task set into wake trigger effects.
// This is a pure function - all input data must be pre-fetched.
func GenerateSchedulePlan(input SchedulePlanInput) (SchedulePlan, error) {
	if !input.Enabled {
		return SchedulePlan{Disabled: true}, nil
	}

	plan := SchedulePlan{
		Cancel: effects.WakeEffect{
			Operation: effects.WakeCancel,
			IDs:       OwnedTriggers(input.PendingTriggerIDs),
		},
	}

	if !input.TargetsConfigured {
		plan.ShieldUnavailable = true
		return plan, nil
	}

	for _, t := range input.Tasks {
		if g := CheckEligibility(t, input.Now); !g.Allowed {
			plan.Skipped = append(plan.Skipped, SkippedTask{TaskID: t.ID, Reason: g.Reason})
		}
	}

	for _, w := range EligibleWindows(input.Tasks, input.Now) {
		switch {
		case w.Elapsed(input.Now):
			plan.Skipped = append(plan.Skipped, SkippedTask{TaskID: w.TaskID, Reason: "window already elapsed"})

		case w.Contains(input.Now):
			plan.Activate = append(plan.Activate, w)
			end, err := triggerEffect(w, KindEnd, w.End)
			if err != nil {
				return SchedulePlan{}, err
			}
			plan.Tasks = append(plan.Tasks, TaskTriggers{TaskID: w.TaskID, Effects: []effects.WakeEffect{end}})

		default:
			start, err := triggerEffect(w, KindStart, w.Start)
			if err != nil {
				return SchedulePlan{}, err
			}
			end, err := triggerEffect(w, KindEnd, w.End)
			if err != nil {
				return SchedulePlan{}, err
			}
			plan.Tasks = append(plan.Tasks, TaskTriggers{TaskID: w.TaskID, Effects: []effects.WakeEffect{start, end}})
		}
	}

	return plan, nil
}

func triggerEffect(w Window, kind TriggerKind, fireAt time.Time) (effects.WakeEffect, error) {
	payload, err := EncodePayload(Payload{
		Kind:      kind,
		TaskID:    w.TaskID,
		Title:     w.Title,
		WindowEnd: w.End,
	})
	if err != nil {
		return effects.WakeEffect{}, err
	}
	return effects.WakeEffect{
		Operation: effects.WakeSchedule,
		IDs:       []string{TriggerID(w.TaskID, kind)},
		FireAt:    fireAt,
		Payload:   payload,
	}, nil
}
