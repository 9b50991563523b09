// ABOUTME: Deal database operations
// ABOUTME: Handles CRUD and stage moves for pipeline deals
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/salesflow/models"
)

// CreateDeal appends a deal. A zero ID is replaced with a timestamp id.
func CreateDeal(db *sql.DB, deal *models.Deal) error {
	if deal.ID == 0 {
		deal.ID = models.NewID(time.Now())
	}
	if deal.Stage == "" {
		deal.Stage = models.StageProspecting
	}
	return insertDeal(db, deal, -1)
}

func insertDeal(db execer, deal *models.Deal, position int) error {
	query := `
		INSERT INTO deals (id, name, contact_id, value, stage, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	args := []any{deal.ID, deal.Name, deal.ContactID, deal.Value, deal.Stage, position}
	if position < 0 {
		query = `
			INSERT INTO deals (id, name, contact_id, value, stage, position)
			VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM deals))
		`
		args = args[:5]
	}

	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert deal: %w", err)
	}
	return nil
}

func GetDeal(db *sql.DB, id int64) (*models.Deal, error) {
	deal := &models.Deal{}
	err := db.QueryRow(`
		SELECT id, name, contact_id, value, stage
		FROM deals WHERE id = ?
	`, id).Scan(&deal.ID, &deal.Name, &deal.ContactID, &deal.Value, &deal.Stage)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// ListDeals returns deals in display order, optionally filtered by stage.
func ListDeals(db *sql.DB, stage string) ([]models.Deal, error) {
	var rows *sql.Rows
	var err error
	if stage != "" {
		rows, err = db.Query(`
			SELECT id, name, contact_id, value, stage
			FROM deals WHERE stage = ? ORDER BY position, id
		`, stage)
	} else {
		rows, err = db.Query(`
			SELECT id, name, contact_id, value, stage
			FROM deals ORDER BY position, id
		`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := []models.Deal{}
	for rows.Next() {
		var d models.Deal
		if err := rows.Scan(&d.ID, &d.Name, &d.ContactID, &d.Value, &d.Stage); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func UpdateDealStage(db *sql.DB, id int64, stage string) error {
	if !models.IsValidStage(stage) {
		return fmt.Errorf("invalid stage: %s", stage)
	}
	res, err := db.Exec(`UPDATE deals SET stage = ? WHERE id = ?`, stage, id)
	if err != nil {
		return err
	}
	return requireRow(res, "deal", id)
}

func DeleteDeal(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM deals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "deal", id)
}
