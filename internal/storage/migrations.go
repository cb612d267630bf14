package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    doc_path TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Tags table (duplicates allowed, no uniqueness on category/value)
CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    value TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tags_project ON tags(project_id);
CREATE INDEX IF NOT EXISTS idx_tags_category_value ON tags(category, value);
`

const migrationV1Down = `
-- Drop all tables in reverse order of dependencies
DROP INDEX IF EXISTS idx_tags_category_value;
DROP INDEX IF EXISTS idx_tags_project;

DROP TABLE IF EXISTS tags;
DROP TABLE IF EXISTS projects;
DROP TABLE IF EXISTS schema_version;
`

// migrationV11Up adds a revision counter bumped by every committed write to
// projects or tags, from any connection or process.
const migrationV11Up = `
CREATE TABLE IF NOT EXISTS catalog_revision (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    revision INTEGER NOT NULL
);

INSERT OR IGNORE INTO catalog_revision (id, revision) VALUES (1, 0);

CREATE TRIGGER IF NOT EXISTS trg_projects_insert_revision AFTER INSERT ON projects
BEGIN UPDATE catalog_revision SET revision = revision + 1 WHERE id = 1; END;

CREATE TRIGGER IF NOT EXISTS trg_projects_update_revision AFTER UPDATE ON projects
BEGIN UPDATE catalog_revision SET revision = revision + 1 WHERE id = 1; END;

CREATE TRIGGER IF NOT EXISTS trg_projects_delete_revision AFTER DELETE ON projects
BEGIN UPDATE catalog_revision SET revision = revision + 1 WHERE id = 1; END;

CREATE TRIGGER IF NOT EXISTS trg_tags_insert_revision AFTER INSERT ON tags
BEGIN UPDATE catalog_revision SET revision = revision + 1 WHERE id = 1; END;

CREATE TRIGGER IF NOT EXISTS trg_tags_update_revision AFTER UPDATE ON tags
BEGIN UPDATE catalog_revision SET revision = revision + 1 WHERE id = 1; END;

CREATE TRIGGER IF NOT EXISTS trg_tags_delete_revision AFTER DELETE ON tags
BEGIN UPDATE catalog_revision SET revision = revision + 1 WHERE id = 1; END;
`

const migrationV11Down = `
DROP TRIGGER IF EXISTS trg_tags_delete_revision;
DROP TRIGGER IF EXISTS trg_tags_update_revision;
DROP TRIGGER IF EXISTS trg_tags_insert_revision;
DROP TRIGGER IF EXISTS trg_projects_delete_revision;
DROP TRIGGER IF EXISTS trg_projects_update_revision;
DROP TRIGGER IF EXISTS trg_projects_insert_revision;

DROP TABLE IF EXISTS catalog_revision;
`

// currentSchemaVersion returns the most recently applied schema version, or
// 0.0.0 for a fresh database
func currentSchemaVersion(ctx context.Context, q querier) (*semver.Version, error) {
	var tableName string
	err := q.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	var versionStr string
	err = q.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC, version DESC LIMIT 1").Scan(&versionStr)
	if err == sql.ErrNoRows || (err == nil && versionStr == "") {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}

	v, err := semver.NewVersion(versionStr)
	if err != nil {
		return nil, fmt.Errorf("invalid current schema version %s: %w", versionStr, err)
	}
	return v, nil
}

// ApplyMigrations runs all pending migrations. Each migration and its
// version record are applied in one transaction.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	current, err := currentSchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		target, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !current.LessThan(target) {
			continue
		}

		if err := inTx(ctx, db,
			execStep(ctx, migration.Up),
			execStep(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version),
		); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		current = target
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := currentSchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return fmt.Errorf("no migrations to rollback")
	}

	var migration *Migration
	for i := range AllMigrations {
		if v, err := semver.NewVersion(AllMigrations[i].Version); err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", current)
	}

	// The down script may drop schema_version itself, so the record is
	// removed first.
	err = inTx(ctx, db,
		execStep(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version),
		execStep(ctx, migration.Down),
	)
	if err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}

	return nil
}

// inTx runs steps in order inside a single transaction
func inTx(ctx context.Context, db *sql.DB, steps ...func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		if err := step(tx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func execStep(ctx context.Context, query string, args ...interface{}) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
}
