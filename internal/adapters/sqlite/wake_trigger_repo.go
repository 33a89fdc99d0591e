package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/focusguard/internal/ports/secondary"
)

// WakeTriggerRepository is a local wake scheduler: triggers persist in SQLite
// so they survive the process, and a foreground host polls Due to deliver them.
type WakeTriggerRepository struct {
	db *sql.DB
}

// NewWakeTriggerRepository creates a new SQLite wake trigger repository.
func NewWakeTriggerRepository(db *sql.DB) *WakeTriggerRepository {
	return &WakeTriggerRepository{db: db}
}

var (
	_ secondary.WakeScheduler = (*WakeTriggerRepository)(nil)
	_ secondary.WakeInbox     = (*WakeTriggerRepository)(nil)
)

// Schedule registers a trigger, replacing a pending one with the same id.
func (r *WakeTriggerRepository) Schedule(ctx context.Context, id string, fireAt time.Time, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO wake_triggers (id, fire_at, payload) VALUES (?, ?, ?)",
		id, fireAt.Unix(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to schedule trigger %s: %w", id, err)
	}
	return nil
}

// Cancel removes pending triggers. Unknown ids are ignored.
func (r *WakeTriggerRepository) Cancel(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.deleteIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to cancel triggers: %w", err)
	}
	return nil
}

// Pending lists the ids of triggers that have not been delivered.
func (r *WakeTriggerRepository) Pending(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM wake_triggers ORDER BY fire_at ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list pending triggers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Due returns triggers whose fire time is at or before now, oldest first.
func (r *WakeTriggerRepository) Due(ctx context.Context, now time.Time) ([]secondary.FiredTrigger, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, fire_at, payload FROM wake_triggers WHERE fire_at <= ? ORDER BY fire_at ASC, id ASC",
		now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due triggers: %w", err)
	}
	defer rows.Close()

	var due []secondary.FiredTrigger
	for rows.Next() {
		var (
			t      secondary.FiredTrigger
			fireAt int64
		)
		if err := rows.Scan(&t.ID, &fireAt, &t.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		t.FireAt = time.Unix(fireAt, 0).In(now.Location())
		due = append(due, t)
	}
	return due, rows.Err()
}

// Ack removes delivered triggers.
func (r *WakeTriggerRepository) Ack(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.deleteIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to acknowledge triggers: %w", err)
	}
	return nil
}

func (r *WakeTriggerRepository) deleteIDs(ctx context.Context, ids []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM wake_triggers WHERE id IN ("+placeholders+")", args...)
	return err
}
