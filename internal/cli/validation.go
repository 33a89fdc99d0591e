package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const taskPrefix = "TASK"

var digitsOnly = regexp.MustCompile(`^\d+$`)

// validateTaskID checks if an ID has the TASK- prefix format.
// Returns an error with helpful message if the ID appears to be a short ID.
func validateTaskID(id string) error {
	if strings.HasPrefix(id, taskPrefix+"-") {
		return nil
	}

	if digitsOnly.MatchString(id) {
		return fmt.Errorf("invalid task ID '%s'. Use full ID format: %s-%s", id, taskPrefix, id)
	}

	if strings.HasPrefix(strings.ToUpper(id), taskPrefix+"-") {
		return fmt.Errorf("invalid task ID '%s'. IDs are case-sensitive, use: %s", id, strings.ToUpper(id))
	}

	return fmt.Errorf("invalid task ID '%s'. Expected format: %s-xxx", id, taskPrefix)
}

// parseClockFlag resolves an HH:MM flag against today's date in now's location.
func parseClockFlag(value string, now time.Time) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time '%s', expected HH:MM", value)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}
