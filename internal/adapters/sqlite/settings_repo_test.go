package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/focusguard/internal/adapters/sqlite"
)

func TestSettingsRepository_DefaultsToDisabled(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSettingsRepository(db)

	enabled, err := repo.AutoBlockingEnabled(context.Background())
	if err != nil {
		t.Fatalf("AutoBlockingEnabled failed: %v", err)
	}
	if enabled {
		t.Error("expected auto blocking to default to disabled")
	}
}

func TestSettingsRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSettingsRepository(db)
	ctx := context.Background()

	for _, want := range []bool{true, false, true} {
		if err := repo.SetAutoBlockingEnabled(ctx, want); err != nil {
			t.Fatalf("SetAutoBlockingEnabled(%v) failed: %v", want, err)
		}
		got, err := repo.AutoBlockingEnabled(ctx)
		if err != nil {
			t.Fatalf("AutoBlockingEnabled failed: %v", err)
		}
		if got != want {
			t.Errorf("AutoBlockingEnabled = %v, want %v", got, want)
		}
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM settings").Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected a single settings row, got %d", rows)
	}
}

func TestSettingsRepository_InvalidValue(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSettingsRepository(db)

	if _, err := db.Exec("INSERT INTO settings (key, value) VALUES ('auto_blocking_enabled', 'maybe')"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := repo.AutoBlockingEnabled(context.Background()); err == nil {
		t.Error("expected error for an unparseable value")
	}
}
