package store

import "fmt"

// sqliteMigrations and postgresMigrations express the same schema in each
// driver's dialect. The admins and site_config tables pin their primary key
// to 1: inserting a second row violates the constraint, which is what makes
// the first-admin-wins setup race-safe without a read-then-write pair.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS site_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		admin_id INTEGER NOT NULL,
		username TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id BIGINT PRIMARY KEY CHECK (id = 1),
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS site_config (
		id BIGINT PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		admin_id BIGINT NOT NULL,
		username TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
}

func (s *Store) migrate() error {
	migrations := sqliteMigrations
	if s.driver == DriverPostgres {
		migrations = postgresMigrations
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
