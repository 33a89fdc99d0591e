package blocking

import (
	"fmt"
	"time"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CheckEligibility evaluates whether a task may drive a blocking session.
// Rules:
// - Blocking must be requested
// - Task must not be completed or skipped
// - Task must be dated today (in now's location)
// - Both window bounds must be present and form a valid window
func CheckEligibility(task Task, now time.Time) GuardResult {
	if !task.BlockingRequested {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s does not request blocking", task.ID),
		}
	}

	if IsClosed(task.Status) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s is %s", task.ID, task.Status),
		}
	}

	if today := Day(now); task.Date != today {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s is dated %s, not today (%s)", task.ID, task.Date, today),
		}
	}

	if !task.HasWindow() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s has no blocking window", task.ID),
		}
	}

	if _, err := WindowFor(task, now.Location()); err != nil {
		return GuardResult{
			Allowed: false,
			Reason:  err.Error(),
		}
	}

	return GuardResult{Allowed: true}
}

// StartDeliveryContext provides context for start trigger delivery guards.
type StartDeliveryContext struct {
	Payload Payload
	Now     time.Time
}

// CanDeliverStart evaluates whether a start trigger may activate its task.
// Rules:
// - The window must not have elapsed (late delivery, device was off)
func CanDeliverStart(ctx StartDeliveryContext) GuardResult {
	if !ctx.Now.Before(ctx.Payload.WindowEnd) {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("window for task %s ended at %s",
				ctx.Payload.TaskID, ctx.Payload.WindowEnd.Format(time.RFC3339)),
		}
	}

	return GuardResult{Allowed: true}
}

// EndDeliveryContext provides context for end trigger delivery guards.
type EndDeliveryContext struct {
	Payload      Payload
	ActiveTaskID string // empty when idle
}

// CanDeliverEnd evaluates whether an end trigger may clear the session.
// Rules:
// - A session must be active
// - The active session must belong to the payload's task
func CanDeliverEnd(ctx EndDeliveryContext) GuardResult {
	if ctx.ActiveTaskID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("no active session to end for task %s", ctx.Payload.TaskID),
		}
	}

	if ctx.ActiveTaskID != ctx.Payload.TaskID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("end for task %s does not match active task %s", ctx.Payload.TaskID, ctx.ActiveTaskID),
		}
	}

	return GuardResult{Allowed: true}
}
