// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// TaskRepository defines the secondary port for task persistence.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// Update replaces the mutable fields of an existing task.
	Update(ctx context.Context, task *TaskRecord) error

	// UpdateStatus updates the status of a task.
	UpdateStatus(ctx context.Context, id, status string) error

	// Delete removes a task from persistence.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available task ID.
	GetNextID(ctx context.Context) (string, error)
}

// TaskSource supplies the tasks of a calendar day. It is the read side the
// blocking orchestrator polls; it never pushes changes.
type TaskSource interface {
	// TasksForDay returns every task dated day (YYYY-MM-DD).
	TasksForDay(ctx context.Context, day string) ([]*TaskRecord, error)
}

// TaskRecord represents a task as stored in persistence.
type TaskRecord struct {
	ID                string
	Title             string
	Date              string // YYYY-MM-DD
	WindowStart       string // HH:MM, empty string means null
	WindowEnd         string // HH:MM, empty string means null
	BlockingRequested bool
	Status            string // pending, in_progress, completed, skipped
	CreatedAt         string
	UpdatedAt         string
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	Date   string
	Status string
}

// SettingsStore persists the global auto blocking toggle.
type SettingsStore interface {
	// AutoBlockingEnabled returns the toggle; false when never set.
	AutoBlockingEnabled(ctx context.Context) (bool, error)

	// SetAutoBlockingEnabled persists the toggle.
	SetAutoBlockingEnabled(ctx context.Context, enabled bool) error
}

// BlockEventLog records blocking transitions for auditing. It is write-mostly
// and never consulted to rebuild session state.
type BlockEventLog interface {
	// Append stores one event.
	Append(ctx context.Context, event *BlockEventRecord) error

	// Recent returns the newest events first, up to limit.
	Recent(ctx context.Context, limit int) ([]*BlockEventRecord, error)
}

// BlockEventRecord is one entry of the block event log.
type BlockEventRecord struct {
	ID         string
	Kind       string // activated, deactivated, handover, start_failed, stop_failed, stale_payload
	TaskID     string // empty string means null
	Detail     string
	OccurredAt time.Time
}
