// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/focusguard/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository and secondary.TaskSource with SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var (
	_ secondary.TaskRepository = (*TaskRepository)(nil)
	_ secondary.TaskSource     = (*TaskRepository)(nil)
)

// scanTask scans a task row into a TaskRecord.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TaskRecord, error) {
	var (
		windowStart sql.NullString
		windowEnd   sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.TaskRecord{}
	err := scanner.Scan(
		&record.ID, &record.Title, &record.Date, &windowStart, &windowEnd,
		&record.BlockingRequested, &record.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.WindowStart = windowStart.String
	record.WindowEnd = windowEnd.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

const taskSelectCols = "id, title, date, window_start, window_end, blocking_requested, status, created_at, updated_at"

func nullClock(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	status := task.Status
	if status == "" {
		status = "pending"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (id, title, date, window_start, window_end, blocking_requested, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.Title, task.Date, nullClock(task.WindowStart), nullClock(task.WindowEnd), task.BlockingRequested, status,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE id = ?",
		id,
	)

	record, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return record, nil
}

// List retrieves tasks matching the given filters.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + " FROM tasks WHERE 1=1"
	args := []any{}

	if filters.Date != "" {
		query += " AND date = ?"
		args = append(args, filters.Date)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY date ASC, COALESCE(window_start, '99:99') ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// TasksForDay returns every task dated day.
func (r *TaskRepository) TasksForDay(ctx context.Context, day string) ([]*secondary.TaskRecord, error) {
	return r.List(ctx, secondary.TaskFilters{Date: day})
}

// Update replaces the mutable fields of an existing task.
func (r *TaskRepository) Update(ctx context.Context, task *secondary.TaskRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, date = ?, window_start = ?, window_end = ?, blocking_requested = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		task.Title, task.Date, nullClock(task.WindowStart), nullClock(task.WindowEnd), task.BlockingRequested, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("task %s not found", task.ID)
	}

	return nil
}

// UpdateStatus updates the status of a task.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("task %s not found", id)
	}

	return nil
}

// Delete removes a task from persistence.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("task %s not found", id)
	}

	return nil
}

// GetNextID returns the next available task ID.
func (r *TaskRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM tasks",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next task ID: %w", err)
	}

	return fmt.Sprintf("TASK-%03d", maxID+1), nil
}
