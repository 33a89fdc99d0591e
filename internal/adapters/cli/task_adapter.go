// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ports/primary"
)

// TaskAdapter is a thin adapter that translates CLI operations to TaskService calls.
type TaskAdapter struct {
	service primary.TaskService
	out     io.Writer
}

// NewTaskAdapter creates a new TaskAdapter with the given service.
func NewTaskAdapter(service primary.TaskService, out io.Writer) *TaskAdapter {
	return &TaskAdapter{
		service: service,
		out:     out,
	}
}

// TaskEdit carries the flags of `task edit`. Nil fields are left unchanged.
type TaskEdit struct {
	Title             *string
	Date              *string
	WindowStart       *string
	WindowEnd         *string
	BlockingRequested *bool
}

// Add creates a new task.
func (a *TaskAdapter) Add(ctx context.Context, req primary.CreateTaskRequest) error {
	resp, err := a.service.CreateTask(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created task %s: %s\n", resp.TaskID, resp.Task.Title)
	if resp.Task.WindowStart != "" {
		fmt.Fprintf(a.out, "  Window: %s %s-%s%s\n", resp.Task.Date, resp.Task.WindowStart, resp.Task.WindowEnd, blockingMarker(resp.Task))
	}
	return nil
}

// List lists tasks with optional date and status filters.
func (a *TaskAdapter) List(ctx context.Context, date, status string) error {
	tasks, err := a.service.ListTasks(ctx, primary.TaskFilters{
		Date:   date,
		Status: status,
	})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %-11s %-12s %s\n", "ID", "DATE", "WINDOW", "STATUS", "TITLE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, t := range tasks {
		window := "-"
		if t.WindowStart != "" {
			window = t.WindowStart + "-" + t.WindowEnd
		}
		fmt.Fprintf(a.out, "%-10s %-10s %-11s %-12s %s%s\n", t.ID, t.Date, window, t.Status, t.Title, blockingMarker(t))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays details for a single task.
func (a *TaskAdapter) Show(ctx context.Context, taskID string) (*primary.Task, error) {
	task, err := a.service.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	fmt.Fprintf(a.out, "\nTask:     %s\n", task.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", task.Title)
	fmt.Fprintf(a.out, "Date:     %s\n", task.Date)
	if task.WindowStart != "" {
		fmt.Fprintf(a.out, "Window:   %s-%s\n", task.WindowStart, task.WindowEnd)
	}
	fmt.Fprintf(a.out, "Blocking: %t\n", task.BlockingRequested)
	fmt.Fprintf(a.out, "Status:   %s\n", task.Status)
	fmt.Fprintf(a.out, "Created:  %s\n", task.CreatedAt)
	fmt.Fprintln(a.out)

	return task, nil
}

// Edit updates the given fields of a task.
func (a *TaskAdapter) Edit(ctx context.Context, taskID string, edit TaskEdit) error {
	if edit.Title == nil && edit.Date == nil && edit.WindowStart == nil && edit.WindowEnd == nil && edit.BlockingRequested == nil {
		return fmt.Errorf("must specify at least one of --title, --date, --start, --end, --block")
	}

	err := a.service.UpdateTask(ctx, primary.UpdateTaskRequest{
		TaskID:            taskID,
		Title:             edit.Title,
		Date:              edit.Date,
		WindowStart:       edit.WindowStart,
		WindowEnd:         edit.WindowEnd,
		BlockingRequested: edit.BlockingRequested,
	})
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Task %s updated\n", taskID)
	return nil
}

// Start marks a task as in progress.
func (a *TaskAdapter) Start(ctx context.Context, taskID string) error {
	if err := a.service.StartTask(ctx, taskID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Task %s started\n", taskID)
	return nil
}

// Complete marks a task as completed.
func (a *TaskAdapter) Complete(ctx context.Context, taskID string) error {
	if err := a.service.CompleteTask(ctx, taskID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Task %s marked as complete\n", taskID)
	return nil
}

// Skip marks a task as skipped.
func (a *TaskAdapter) Skip(ctx context.Context, taskID string) error {
	if err := a.service.SkipTask(ctx, taskID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Task %s skipped\n", taskID)
	return nil
}

// Delete deletes a task.
func (a *TaskAdapter) Delete(ctx context.Context, taskID string) error {
	if err := a.service.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Task %s deleted\n", taskID)
	return nil
}

func blockingMarker(t *primary.Task) string {
	if !t.BlockingRequested || t.WindowStart == "" || blocking.IsClosed(t.Status) {
		return ""
	}
	return color.New(color.FgHiMagenta).Sprint(" [blocks]")
}
