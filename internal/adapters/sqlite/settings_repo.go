package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/example/focusguard/internal/ports/secondary"
)

const autoBlockingKey = "auto_blocking_enabled"

// SettingsRepository implements secondary.SettingsStore with SQLite.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SQLite settings repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

var _ secondary.SettingsStore = (*SettingsRepository)(nil)

// AutoBlockingEnabled returns the toggle; false when never set.
func (r *SettingsRepository) AutoBlockingEnabled(ctx context.Context) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", autoBlockingKey).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read setting %s: %w", autoBlockingKey, err)
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid value %q for setting %s", value, autoBlockingKey)
	}
	return enabled, nil
}

// SetAutoBlockingEnabled persists the toggle.
func (r *SettingsRepository) SetAutoBlockingEnabled(ctx context.Context, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		autoBlockingKey, strconv.FormatBool(enabled),
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", autoBlockingKey, err)
	}
	return nil
}
