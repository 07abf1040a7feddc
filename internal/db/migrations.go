package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// Identifiers are agency-assigned strings (e.g. "10001", "SH-003"),
// so every entity table uses a TEXT primary key.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		username      TEXT    PRIMARY KEY,
		password_hash TEXT    NOT NULL,
		name          TEXT    NOT NULL DEFAULT '',
		email         TEXT    NOT NULL DEFAULT '',
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id            TEXT    PRIMARY KEY,
		address       TEXT    NOT NULL,
		type          TEXT    NOT NULL CHECK (type IN ('apartment', 'house')),
		status        TEXT    NOT NULL CHECK (status IN ('available', 'reserved', 'sold')),
		price         INTEGER NOT NULL,
		area          REAL    NOT NULL,
		rooms         INTEGER,
		floor         INTEGER,
		total_floors  INTEGER,
		owner         TEXT    NOT NULL DEFAULT '',
		owner_phone   TEXT    NOT NULL DEFAULT '',
		owner_email   TEXT    NOT NULL DEFAULT '',
		district      TEXT    NOT NULL DEFAULT '',
		description   TEXT    NOT NULL DEFAULT '',
		inventory     TEXT    NOT NULL DEFAULT '',
		notes         TEXT    NOT NULL DEFAULT '',
		has_furniture INTEGER NOT NULL DEFAULT 0,
		photos        TEXT    NOT NULL DEFAULT '[]',
		tags          TEXT    NOT NULL DEFAULT '[]',
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id          TEXT    PRIMARY KEY,
		name        TEXT    NOT NULL,
		phone       TEXT    NOT NULL,
		call_status TEXT    NOT NULL DEFAULT 'not_called'
		            CHECK (call_status IN ('not_called', 'reached', 'not_reached')),
		type        TEXT    NOT NULL CHECK (type IN ('buyer', 'seller', 'both')),
		status      TEXT    NOT NULL DEFAULT 'active'
		            CHECK (status IN ('active', 'inactive', 'completed')),
		budget      TEXT    NOT NULL DEFAULT '',
		notes       TEXT    NOT NULL DEFAULT '',
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS showings (
		id          TEXT    PRIMARY KEY,
		property_id TEXT    NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		date        TEXT    NOT NULL,
		time        TEXT    NOT NULL,
		notes       TEXT    NOT NULL DEFAULT '',
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS admin_actions (
		id             TEXT    PRIMARY KEY,
		admin_username TEXT    NOT NULL,
		action         TEXT    NOT NULL,
		details        TEXT    NOT NULL DEFAULT '',
		ip_address     TEXT    NOT NULL DEFAULT '',
		timestamp      DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS passkey_credentials (
		id              TEXT    PRIMARY KEY,
		username        TEXT    NOT NULL,
		name            TEXT    NOT NULL DEFAULT '',
		credential_json TEXT    NOT NULL,
		created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_showings_property ON showings(property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_admin ON admin_actions(admin_username)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}
