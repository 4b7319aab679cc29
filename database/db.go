package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the sqlite database at path and bootstraps
// the schema. Safe to call on an existing database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	// sqlite allows a single writer; keep the pool at one connection so
	// concurrent command handlers queue instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CreateSchema creates the two durable tables. Uses IF NOT EXISTS so it is
// safe to run on every start.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
    uid        TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    times      TEXT NOT NULL,
    guild_id   TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    message_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    max_votes  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_guild ON events(guild_id, created_at);

CREATE TABLE IF NOT EXISTS guild_settings (
    guild_id          TEXT PRIMARY KEY,
    event_role_ids    TEXT NOT NULL DEFAULT '[]',
    require_manage    INTEGER NOT NULL DEFAULT 0,
    default_max_votes INTEGER NOT NULL DEFAULT 0
);
`
