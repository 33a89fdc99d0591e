// Package task contains the pure business logic for task operations.
// Guards are pure functions that evaluate preconditions without side effects.
package task

import (
	"fmt"
	"time"

	"github.com/example/focusguard/internal/core/blocking"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult = blocking.GuardResult

// CreateTaskContext provides context for task creation guards.
type CreateTaskContext struct {
	Title       string
	Date        string
	WindowStart string // optional
	WindowEnd   string // optional
}

// StatusTransitionContext provides context for status change guards.
type StatusTransitionContext struct {
	TaskID string
	Status string // "pending", "in_progress", "completed", "skipped"
}

// MutationContext describes a task before and after a change.
// After is nil when the task was deleted.
type MutationContext struct {
	Before blocking.Task
	After  *blocking.Task
}

// CanCreateTask evaluates whether a task can be created.
// Rules:
// - Title must not be empty
// - Date must be a valid calendar day
// - Window bounds are given together or not at all
// - When given, the window must end after it starts
func CanCreateTask(ctx CreateTaskContext) GuardResult {
	if ctx.Title == "" {
		return GuardResult{Allowed: false, Reason: "task title must not be empty"}
	}

	if _, err := time.Parse(blocking.DayLayout, ctx.Date); err != nil {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", ctx.Date),
		}
	}

	return checkWindow(ctx.WindowStart, ctx.WindowEnd)
}

// CanEditWindow evaluates whether a window edit is acceptable.
// Rules:
// - Window bounds are given together or not at all
// - When given, the window must end after it starts
func CanEditWindow(start, end string) GuardResult {
	return checkWindow(start, end)
}

// CanStartTask evaluates whether a task can be marked in progress.
// Rules:
// - Status must be "pending"
func CanStartTask(ctx StatusTransitionContext) GuardResult {
	if ctx.Status != blocking.StatusPending {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only start pending tasks (current status: %s)", ctx.Status),
		}
	}

	return GuardResult{Allowed: true}
}

// CanCloseTask evaluates whether a task can be completed or skipped.
// Rules:
// - Task must not already be completed or skipped
func CanCloseTask(ctx StatusTransitionContext) GuardResult {
	if blocking.IsClosed(ctx.Status) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s is already %s", ctx.TaskID, ctx.Status),
		}
	}

	return GuardResult{Allowed: true}
}

// RequiresTriggerCancel reports whether a mutation must remove the task's
// wake triggers (and end its session if it holds one).
// Rules:
// - Task deleted
// - Task completed or skipped
// - Blocking no longer requested
// - Window or date edited
func RequiresTriggerCancel(ctx MutationContext) bool {
	if ctx.After == nil {
		return true
	}
	after := *ctx.After

	if blocking.IsClosed(after.Status) && !blocking.IsClosed(ctx.Before.Status) {
		return true
	}
	if ctx.Before.BlockingRequested && !after.BlockingRequested {
		return true
	}
	return ctx.Before.Date != after.Date ||
		ctx.Before.WindowStart != after.WindowStart ||
		ctx.Before.WindowEnd != after.WindowEnd
}

func checkWindow(start, end string) GuardResult {
	if (start == "") != (end == "") {
		return GuardResult{
			Allowed: false,
			Reason:  "window start and end must be given together",
		}
	}
	if start == "" {
		return GuardResult{Allowed: true}
	}

	sh, sm, err := blocking.ParseClock(start)
	if err != nil {
		return GuardResult{Allowed: false, Reason: err.Error()}
	}
	eh, em, err := blocking.ParseClock(end)
	if err != nil {
		return GuardResult{Allowed: false, Reason: err.Error()}
	}
	if eh*60+em <= sh*60+sm {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("window end %s must be after start %s", end, start),
		}
	}

	return GuardResult{Allowed: true}
}
