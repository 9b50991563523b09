// ABOUTME: Opens the CRM SQLite store, on disk with WAL or private in memory
// ABOUTME: Applies the schema and stamps its version in the settings table
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath selects an in-memory store that lives as long as its handle.
const MemoryPath = ":memory:"

// SchemaVersion is bumped whenever the schema changes shape.
const SchemaVersion = 1

const settingSchemaVersion = "schema_version"

// busyTimeoutMS is how long a writer waits on a lock held by another process.
const busyTimeoutMS = 5000

func OpenDatabase(path string) (*sql.DB, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, busyTimeoutMS)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// One connection serialises writers and keeps an in-memory store alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := stampVersion(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// stampVersion records SchemaVersion on a new store and refuses one written
// by a newer build.
func stampVersion(db *sql.DB) error {
	raw, ok, err := GetSetting(db, settingSchemaVersion)
	if err != nil {
		return err
	}
	if ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("corrupt schema version %q", raw)
		}
		if v > SchemaVersion {
			return fmt.Errorf("database schema version %d is newer than supported version %d", v, SchemaVersion)
		}
		if v == SchemaVersion {
			return nil
		}
	}
	return SetSetting(db, settingSchemaVersion, strconv.Itoa(SchemaVersion))
}
