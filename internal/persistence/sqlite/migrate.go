package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the ordered schema steps. Each entry runs at most once;
// the applied version is tracked in schema_migrations.
var migrations = []string{
	// 1: profiles and sessions.
	`CREATE TABLE user_profiles (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		display_name  TEXT NOT NULL,
		company_id    TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('corretor', 'gestor', 'admin')),
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE TABLE sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES user_profiles(id),
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	);`,

	// 2: weekly on-call rosters, reachable by either ownership key.
	`CREATE TABLE oncall_schedules (
		id               TEXT PRIMARY KEY,
		company_id       TEXT NOT NULL,
		calendar_id      TEXT NOT NULL,
		owner_user_id    TEXT NOT NULL,
		assigned_user_id TEXT,
		mon_works INTEGER NOT NULL DEFAULT 0, mon_start TEXT, mon_end TEXT,
		tue_works INTEGER NOT NULL DEFAULT 0, tue_start TEXT, tue_end TEXT,
		wed_works INTEGER NOT NULL DEFAULT 0, wed_start TEXT, wed_end TEXT,
		thu_works INTEGER NOT NULL DEFAULT 0, thu_start TEXT, thu_end TEXT,
		fri_works INTEGER NOT NULL DEFAULT 0, fri_start TEXT, fri_end TEXT,
		sat_works INTEGER NOT NULL DEFAULT 0, sat_start TEXT, sat_end TEXT,
		sun_works INTEGER NOT NULL DEFAULT 0, sun_start TEXT, sun_end TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (calendar_id, assigned_user_id),
		UNIQUE (owner_user_id, calendar_id)
	);`,

	// 3: local agenda events and the lead notes the miner reads.
	`CREATE TABLE oncall_events (
		id          TEXT PRIMARY KEY,
		company_id  TEXT NOT NULL,
		calendar_id TEXT NOT NULL DEFAULT '',
		external_id TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		client_name TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		responsible TEXT NOT NULL DEFAULT '',
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX idx_oncall_events_company_start ON oncall_events(company_id, start_time);
	CREATE TABLE leads (
		id         TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name       TEXT NOT NULL,
		phone      TEXT NOT NULL DEFAULT '',
		notes      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,

	// 4: WhatsApp instances, automation endpoints, notifications.
	`CREATE TABLE whatsapp_instances (
		id         TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name       TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'desconectada',
		phone      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (company_id, name)
	);
	CREATE TABLE n8n_endpoints (
		id             TEXT PRIMARY KEY,
		company_id     TEXT NOT NULL,
		name           TEXT NOT NULL,
		url            TEXT NOT NULL,
		enabled        INTEGER NOT NULL DEFAULT 1,
		last_status    INTEGER,
		last_latency_ms INTEGER,
		last_tested_at TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	);
	CREATE TABLE notifications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES user_profiles(id),
		title      TEXT NOT NULL,
		body       TEXT NOT NULL DEFAULT '',
		read       INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);`,
}

// Migrate applies pending schema steps in order inside one transaction each.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("sqlite: create migrations table: %w", err)
	}

	var current int
	if err := d.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read migration version: %w", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		step := migrations[version-1]
		err := d.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(step); err != nil {
				return err
			}
			_, err := tx.Exec(
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`, version)
			return err
		})
		if err != nil {
			return fmt.Errorf("sqlite: migration %d: %w", version, err)
		}
	}
	return nil
}
