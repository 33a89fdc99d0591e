package blocking

import (
	"fmt"
	"sort"
	"time"
)

// Window is the [Start, End) interval during which a task should be blocking.
// Windows are derived on every run and never persisted.
type Window struct {
	TaskID string
	Title  string
	Start  time.Time
	End    time.Time
}

// Contains reports whether now falls inside [Start, End).
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

// Future reports whether the window has not started yet.
func (w Window) Future(now time.Time) bool {
	return w.Start.After(now)
}

// Elapsed reports whether the window is over.
func (w Window) Elapsed(now time.Time) bool {
	return !now.Before(w.End)
}

// WindowFor combines a task's date with its time-of-day bounds in loc.
// A window that does not end after it starts is rejected.
func WindowFor(task Task, loc *time.Location) (Window, error) {
	if !task.HasWindow() {
		return Window{}, fmt.Errorf("%w: task %s has no window", ErrMalformedWindow, task.ID)
	}

	day, err := time.ParseInLocation(DayLayout, task.Date, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: task %s has invalid date %q", ErrMalformedWindow, task.ID, task.Date)
	}

	sh, sm, err := ParseClock(task.WindowStart)
	if err != nil {
		return Window{}, fmt.Errorf("%w: task %s: %v", ErrMalformedWindow, task.ID, err)
	}
	eh, em, err := ParseClock(task.WindowEnd)
	if err != nil {
		return Window{}, fmt.Errorf("%w: task %s: %v", ErrMalformedWindow, task.ID, err)
	}

	w := Window{
		TaskID: task.ID,
		Title:  task.Title,
		Start:  time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, loc),
		End:    time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, loc),
	}
	if !w.End.After(w.Start) {
		return Window{}, fmt.Errorf("%w: task %s ends at %s, not after %s", ErrMalformedWindow, task.ID, task.WindowEnd, task.WindowStart)
	}

	return w, nil
}

// EligibleWindows returns the windows of every eligible task, in tie-break
// order (earliest start, then task id).
func EligibleWindows(tasks []Task, now time.Time) []Window {
	var windows []Window
	for _, t := range tasks {
		if !CheckEligibility(t, now).Allowed {
			continue
		}
		w, err := WindowFor(t, now.Location())
		if err != nil {
			continue
		}
		windows = append(windows, w)
	}
	SortWindows(windows)
	return windows
}

// InWindow returns the eligible windows that contain now, in tie-break order.
// Windows for taskIDs listed in exclude are left out.
func InWindow(tasks []Task, now time.Time, exclude ...string) []Window {
	var result []Window
	for _, w := range EligibleWindows(tasks, now) {
		if !w.Contains(now) || containsID(exclude, w.TaskID) {
			continue
		}
		result = append(result, w)
	}
	return result
}

// SortWindows orders windows by start, then by task id, so overlapping
// windows always resolve to the same task regardless of input order.
func SortWindows(windows []Window) {
	sort.SliceStable(windows, func(i, j int) bool {
		if !windows[i].Start.Equal(windows[j].Start) {
			return windows[i].Start.Before(windows[j].Start)
		}
		return windows[i].TaskID < windows[j].TaskID
	})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
