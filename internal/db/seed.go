package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with a day of development tasks.
// Windows are relative to the day so the fixtures exercise blocking whenever
// they are seeded.
func SeedFixtures(database *sql.DB, day string) error {
	tasks := []struct {
		id, title, start, end string
		blocking              bool
		status                string
	}{
		{"TASK-001", "Morning planning", "08:00", "08:30", false, "pending"},
		{"TASK-002", "Deep work: draft chapter", "09:00", "11:00", true, "pending"},
		{"TASK-003", "Code review", "10:30", "11:30", true, "pending"},
		{"TASK-004", "Lunch", "", "", false, "pending"},
		{"TASK-005", "Write report", "14:00", "15:30", true, "pending"},
		{"TASK-006", "Inbox zero", "16:00", "16:30", true, "skipped"},
	}

	for _, t := range tasks {
		var start, end sql.NullString
		if t.start != "" {
			start = sql.NullString{String: t.start, Valid: true}
			end = sql.NullString{String: t.end, Valid: true}
		}
		if _, err := database.Exec(
			"INSERT INTO tasks (id, title, date, window_start, window_end, blocking_requested, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
			t.id, t.title, day, start, end, t.blocking, t.status,
		); err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
	}

	if _, err := database.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES ('auto_blocking_enabled', 'true')",
	); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	return nil
}
