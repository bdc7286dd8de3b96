package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/matiasleandrokruk/seekassist/internal/infra/sqlite"
)

// TestMigrate_RunsAllMigrations verifies that MigrateUp applies all pending migrations.
func TestMigrate_RunsAllMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v; want nil", err)
	}

	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM schema_migrations")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("SELECT COUNT(*) FROM schema_migrations error = %v", err)
	}

	if count == 0 {
		t.Error("schema_migrations has 0 rows after MigrateUp; want > 0")
	}
}

// TestMigrate_Idempotent verifies that running MigrateUp twice does not fail.
func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() first run error = %v; want nil", err)
	}
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() second run error = %v; want nil (idempotent)", err)
	}
}

func TestMigrate_SettingsTableCreated(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	assertTableExists(t, db, "settings")
}

func TestMigrate_RequestLogTableCreated(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	assertTableExists(t, db, "request_log")
}

// TestMigrate_SettingsNameUnique verifies a setting name is stored once.
func TestMigrate_SettingsNameUnique(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`INSERT INTO settings (name, value) VALUES ('api_key', 'a')`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO settings (name, value) VALUES ('api_key', 'b')`); err == nil {
		t.Error("duplicate setting name succeeded; want PRIMARY KEY constraint error")
	}
}

// TestMigrate_RequestLogModeChecked verifies only known modes are accepted.
func TestMigrate_RequestLogModeChecked(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO request_log (id, mode, outcome, created_at)
		VALUES ('r-1', 'fix', 'fix', datetime('now'))
	`); err != nil {
		t.Fatalf("valid insert: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO request_log (id, mode, outcome, created_at)
		VALUES ('r-2', 'translate', 'content', datetime('now'))
	`)
	if err == nil {
		t.Error("unknown mode accepted; want CHECK constraint error")
	}
}

func TestMigrate_SettingsSealedChecked(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`INSERT INTO settings (name, value, sealed) VALUES ('x', 'v', 2)`); err == nil {
		t.Error("sealed = 2 accepted; want CHECK constraint error")
	}
}

// TestMigrate_Version returns the current applied migration version.
func TestMigrate_Version(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v; want nil", err)
	}

	if version == 0 {
		t.Error("MigrationVersion() = 0; want > 0 after MigrateUp")
	}
}

// TestMigrate_OnlyAppliesPending verifies that already-applied migrations are NOT re-run.
func TestMigrate_OnlyAppliesPending(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() first error = %v", err)
	}

	var countBefore int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countBefore); err != nil {
		t.Fatalf("count before: %v", err)
	}

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() second error = %v", err)
	}

	var countAfter int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countAfter); err != nil {
		t.Fatalf("count after: %v", err)
	}

	if countAfter != countBefore {
		t.Errorf("schema_migrations count changed from %d to %d; want unchanged", countBefore, countAfter)
	}
}

// TestMigrationVersion_NoMigrations verifies version is 0 on fresh DB.
func TestMigrationVersion_NoMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}

	if version != 0 {
		t.Errorf("MigrationVersion() = %d; want 0 on fresh DB", version)
	}
}

// assertTableExists fails the test if the given table doesn't exist in the DB.
func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		tableName,
	).Scan(&name)

	if err == sql.ErrNoRows {
		t.Errorf("table %q not found in sqlite_master after MigrateUp", tableName)
		return
	}
	if err != nil {
		t.Fatalf("assertTableExists(%q) query error = %v", tableName, err)
	}
}
