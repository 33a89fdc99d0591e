// Package blocking contains the pure business logic for scheduled focus blocking.
// Nothing in this package performs I/O: callers pre-fetch tasks, settings and
// the current instant, and interpret the plans and transitions returned here.
package blocking

import (
	"fmt"
	"time"
)

// Task status values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSkipped    = "skipped"
)

// Layouts used for the calendar day and the local time-of-day bounds.
const (
	DayLayout   = "2006-01-02"
	ClockLayout = "15:04"
)

// Task is the read-only view of a time-boxed task this package works on.
type Task struct {
	ID                string
	Title             string
	Date              string // YYYY-MM-DD
	WindowStart       string // HH:MM, empty when unset
	WindowEnd         string // HH:MM, empty when unset
	BlockingRequested bool
	Status            string
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// IsClosed reports whether the status takes a task out of blocking for good.
func IsClosed(status string) bool {
	return status == StatusCompleted || status == StatusSkipped
}

// HasWindow reports whether both window bounds are present.
func (t Task) HasWindow() bool {
	return t.WindowStart != "" && t.WindowEnd != ""
}

// Day formats the calendar day of an instant in its own location.
func Day(now time.Time) string {
	return now.Format(DayLayout)
}

// ParseClock parses an HH:MM time-of-day.
func ParseClock(v string) (hour, minute int, err error) {
	t, err := time.Parse(ClockLayout, v)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q (want HH:MM)", v)
	}
	return t.Hour(), t.Minute(), nil
}
