package db

import "database/sql"

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(). If repository code references a column that
// doesn't exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Tasks (time-boxed tasks of a calendar day)
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	date TEXT NOT NULL,
	window_start TEXT,
	window_end TEXT,
	blocking_requested INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('pending', 'in_progress', 'completed', 'skipped')) DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	CHECK ((window_start IS NULL) = (window_end IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

-- Settings (key/value, e.g. auto_blocking_enabled)
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Wake triggers (local wake scheduler; fire_at is unix seconds)
CREATE TABLE IF NOT EXISTS wake_triggers (
	id TEXT PRIMARY KEY,
	fire_at INTEGER NOT NULL,
	payload BLOB,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_wake_triggers_fire_at ON wake_triggers(fire_at);

-- Block events (audit trail of blocking transitions)
CREATE TABLE IF NOT EXISTS block_events (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	task_id TEXT,
	detail TEXT,
	occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_block_events_occurred ON block_events(occurred_at);
`

// InitSchema brings a database up to the current schema.
func InitSchema(database *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		// schema_version table exists - run any pending migrations
		return RunMigrations(database)
	}

	// Fresh install - create the schema directly and mark every migration applied
	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
