package primary

import "context"

// TaskService defines the primary port for task operations.
// Every mutation keeps the blocking schedule in step with the task set.
type TaskService interface {
	// CreateTask creates a new task.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ListTasks lists tasks with optional filters.
	ListTasks(ctx context.Context, filters TaskFilters) ([]*Task, error)

	// UpdateTask edits a task's title, date, window or blocking flag.
	UpdateTask(ctx context.Context, req UpdateTaskRequest) error

	// StartTask marks a pending task as in progress.
	StartTask(ctx context.Context, taskID string) error

	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, taskID string) error

	// SkipTask marks a task as skipped.
	SkipTask(ctx context.Context, taskID string) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, taskID string) error
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	Title             string
	Date              string // YYYY-MM-DD, defaults to today
	WindowStart       string // Optional HH:MM
	WindowEnd         string // Optional HH:MM
	BlockingRequested bool
}

// CreateTaskResponse contains the result of creating a task.
type CreateTaskResponse struct {
	TaskID string
	Task   *Task
}

// UpdateTaskRequest contains parameters for updating a task.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	TaskID            string
	Title             *string
	Date              *string
	WindowStart       *string // empty string clears the window
	WindowEnd         *string
	BlockingRequested *bool
}

// TaskFilters contains filter options for listing tasks.
type TaskFilters struct {
	Date   string
	Status string
}

// Task represents a task entity at the port boundary.
type Task struct {
	ID                string
	Title             string
	Date              string
	WindowStart       string
	WindowEnd         string
	BlockingRequested bool
	Status            string
	CreatedAt         string
	UpdatedAt         string
}
