// ABOUTME: Tests for database open and schema initialization
// ABOUTME: Provides the shared setupTestDB helper for package tests
package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	return db
}

func TestOpenDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "salesflow.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected 4 tables, got %d", count)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL mode, got %s", mode)
	}
}

func TestOpenDatabaseParentIsFile(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenDatabase(filepath.Join(blocker, "test.db")); err == nil {
		t.Error("Expected error when the parent path is a file")
	}
}

func TestOpenDatabaseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("Initial OpenDatabase failed: %v", err)
	}
	db.Close()

	db, err = OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase should handle re-initialization, got: %v", err)
	}
	defer db.Close()
}

func TestOpenDatabaseInMemory(t *testing.T) {
	db, err := OpenDatabase(MemoryPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer db.Close()

	if err := SetSetting(db, "k", "v"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	value, ok, err := GetSetting(db, "k")
	if err != nil || !ok || value != "v" {
		t.Errorf("Expected setting to survive on the single connection, got %q %v %v", value, ok, err)
	}
	if _, err := os.Stat(MemoryPath); !os.IsNotExist(err) {
		t.Error("In-memory store must not create a file")
	}
}

func TestOpenDatabaseBusyTimeout(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var timeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("Failed to query busy timeout: %v", err)
	}
	if timeout != busyTimeoutMS {
		t.Errorf("Expected busy timeout %d, got %d", busyTimeoutMS, timeout)
	}
}

func TestOpenDatabaseStampsSchemaVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	value, ok, err := GetSetting(db, settingSchemaVersion)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if !ok || value != "1" {
		t.Errorf("Expected schema version 1, got %q (present=%v)", value, ok)
	}
}

func TestOpenDatabaseRejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("Initial OpenDatabase failed: %v", err)
	}
	if err := SetSetting(db, settingSchemaVersion, "99"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	db.Close()

	if _, err := OpenDatabase(dbPath); err == nil {
		t.Error("Expected error opening a database from a newer version")
	}
}
