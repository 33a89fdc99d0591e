package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/focusguard/internal/ports/secondary"
)

// BlockEventRepository implements secondary.BlockEventLog with SQLite.
type BlockEventRepository struct {
	db *sql.DB
}

// NewBlockEventRepository creates a new SQLite block event repository.
func NewBlockEventRepository(db *sql.DB) *BlockEventRepository {
	return &BlockEventRepository{db: db}
}

var _ secondary.BlockEventLog = (*BlockEventRepository)(nil)

// Append stores one event.
func (r *BlockEventRepository) Append(ctx context.Context, event *secondary.BlockEventRecord) error {
	var taskID sql.NullString
	if event.TaskID != "" {
		taskID = sql.NullString{String: event.TaskID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO block_events (id, kind, task_id, detail, occurred_at) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Kind, taskID, event.Detail, event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append block event: %w", err)
	}
	return nil
}

// Recent returns the newest events first, up to limit.
func (r *BlockEventRepository) Recent(ctx context.Context, limit int) ([]*secondary.BlockEventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, kind, task_id, detail, occurred_at FROM block_events ORDER BY occurred_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list block events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.BlockEventRecord
	for rows.Next() {
		var (
			event  secondary.BlockEventRecord
			taskID sql.NullString
			detail sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.Kind, &taskID, &detail, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan block event: %w", err)
		}
		event.TaskID = taskID.String
		event.Detail = detail.String
		events = append(events, &event)
	}
	return events, rows.Err()
}
