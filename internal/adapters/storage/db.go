// Package storage holds the SQLite persistence shared by the portal's
// client-state stores: admin sessions, flash notifications, and submission
// receipts. Complaint data itself lives in the external backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by all stores, satisfied by *sql.DB.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

type migration struct {
	version int
	sql     string
}

// migrations is the ordered schema history. Never edit an applied entry;
// append a new version instead.
var migrations = []migration{
	{
		version: 1,
		sql: `
		CREATE TABLE admin_session (
			client_id   TEXT NOT NULL,
			category    TEXT NOT NULL,
			token       TEXT NOT NULL,
			admin_id    TEXT NOT NULL DEFAULT '',
			admin_name  TEXT NOT NULL DEFAULT '',
			admin_email TEXT NOT NULL DEFAULT '',
			saved_at    TEXT NOT NULL,
			PRIMARY KEY (client_id, category)
		);

		CREATE TABLE flash (
			id         TEXT PRIMARY KEY,
			client_id  TEXT NOT NULL,
			level      TEXT NOT NULL,
			message    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX idx_flash_client ON flash(client_id);

		CREATE TABLE submission_receipt (
			id            TEXT PRIMARY KEY,
			category      TEXT NOT NULL,
			complaint_id  TEXT NOT NULL,
			student_email TEXT NOT NULL,
			submitted_at  TEXT NOT NULL
		);
		`,
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion reads the currently applied schema version.
// POST: returns 0 for a database MigrateDB has never touched
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// MigrateDB applies all pending migrations in order, each in its own
// transaction. Safe to run at every startup.
// PRE: db is a valid open connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}
