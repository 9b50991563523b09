// ABOUTME: Database schema definitions
// ABOUTME: Creates the contacts, deals, activity and settings tables
package db

import (
	"database/sql"
)

// Ids are creation-time milliseconds supplied by the caller. position keeps
// the display order independent of id values. deals.contact_id is a weak
// reference and deliberately has no foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'lead',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position);

CREATE TABLE IF NOT EXISTS deals (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	contact_id INTEGER NOT NULL DEFAULT 0,
	value INTEGER NOT NULL DEFAULT 0,
	stage TEXT NOT NULL DEFAULT 'prospecting',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_position ON deals(position);

CREATE TABLE IF NOT EXISTS activity (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity(created_at);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
