// ABOUTME: Activity feed and settings database operations
// ABOUTME: Appends activity entries and stores small key/value settings
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/salesflow/models"
)

// AddActivity appends an entry. Missing ids and timestamps are filled in.
func AddActivity(db *sql.DB, entry *models.Activity) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	return insertActivity(db, entry)
}

func insertActivity(db execer, entry *models.Activity) error {
	_, err := db.Exec(`
		INSERT INTO activity (id, text, created_at) VALUES (?, ?, ?)
	`, entry.ID, entry.Text, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivity returns entries oldest first. A positive limit keeps only
// the most recent entries.
func ListActivity(db *sql.DB, limit int) ([]models.Activity, error) {
	query := `
		SELECT id, text, created_at FROM (
			SELECT id, text, created_at FROM activity
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		) ORDER BY created_at, id
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Text, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// GetSetting returns the stored value and whether it exists.
func GetSetting(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func SetSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
