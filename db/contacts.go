// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD for CRM contacts in display order
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/salesflow/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// CreateContact appends a contact. A zero ID is replaced with a timestamp id.
func CreateContact(db *sql.DB, contact *models.Contact) error {
	if contact.ID == 0 {
		contact.ID = models.NewID(time.Now())
	}
	if contact.Status == "" {
		contact.Status = models.StatusLead
	}
	return insertContact(db, contact, -1)
}

// insertContact writes contact at position, or after the last row when
// position is negative.
func insertContact(db execer, contact *models.Contact, position int) error {
	query := `
		INSERT INTO contacts (id, name, company, email, phone, status, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{contact.ID, contact.Name, contact.Company, contact.Email, contact.Phone, contact.Status, position}
	if position < 0 {
		query = `
			INSERT INTO contacts (id, name, company, email, phone, status, position)
			VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM contacts))
		`
		args = args[:6]
	}

	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

func GetContact(db *sql.DB, id int64) (*models.Contact, error) {
	contact := &models.Contact{}
	err := db.QueryRow(`
		SELECT id, name, company, email, phone, status
		FROM contacts WHERE id = ?
	`, id).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Company,
		&contact.Email,
		&contact.Phone,
		&contact.Status,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func ListContacts(db *sql.DB) ([]models.Contact, error) {
	rows, err := db.Query(`
		SELECT id, name, company, email, phone, status
		FROM contacts ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Status); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func UpdateContact(db *sql.DB, contact *models.Contact) error {
	res, err := db.Exec(`
		UPDATE contacts SET name = ?, company = ?, email = ?, phone = ?, status = ?
		WHERE id = ?
	`, contact.Name, contact.Company, contact.Email, contact.Phone, contact.Status, contact.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "contact", contact.ID)
}

// DeleteContact removes the contact. Deals pointing at it keep their
// dangling reference and render as "Unknown".
func DeleteContact(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "contact", id)
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %d", kind, id)
	}
	return nil
}
