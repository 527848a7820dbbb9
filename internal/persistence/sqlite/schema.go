package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration pairs a monotonically increasing version with the statements that
// bring the schema to that version. Applied versions are tracked in the
// schema_migrations table and never re-run.
type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "people, events, attendances, sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS people (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				password_hash TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT 'standard' CHECK (role IN ('standard', 'admin')),
				can_create_events INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS events (
				id TEXT PRIMARY KEY,
				creator_id TEXT NOT NULL REFERENCES people(id),
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				image_url TEXT,
				address TEXT,
				city TEXT,
				category TEXT,
				ticket_url TEXT,
				visibility TEXT NOT NULL CHECK (visibility IN ('public', 'private')),
				start_at TEXT NOT NULL,
				end_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS attendances (
				id TEXT PRIMARY KEY,
				person_id TEXT NOT NULL REFERENCES people(id),
				event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				UNIQUE (person_id, event_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_attendances_event ON attendances(event_id)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				person_id TEXT NOT NULL REFERENCES people(id),
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
}

// Migrate applies all pending schema migrations in order.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to initialize schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := cp.migrationApplied(ctx, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", m.version, err)
				}
			}
			if _, err := tx.Exec(
				"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
				m.version, m.description,
			); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (cp *ConnectionPool) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := cp.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	return count > 0, nil
}
