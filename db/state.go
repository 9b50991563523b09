// ABOUTME: Whole-state load and save for the CRM demo
// ABOUTME: Persists a session snapshot transactionally and resets to empty
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/salesflow/models"
)

const settingCurrentTab = "current_tab"

// LoadCRMState reads every table into a CRMState. The highlight is
// transient and never persisted.
func LoadCRMState(db *sql.DB) (models.CRMState, error) {
	var state models.CRMState
	var err error

	if state.Contacts, err = ListContacts(db); err != nil {
		return state, fmt.Errorf("failed to load contacts: %w", err)
	}
	if state.Deals, err = ListDeals(db, ""); err != nil {
		return state, fmt.Errorf("failed to load deals: %w", err)
	}
	if state.Activity, err = ListActivity(db, 0); err != nil {
		return state, fmt.Errorf("failed to load activity: %w", err)
	}

	tab, ok, err := GetSetting(db, settingCurrentTab)
	if err != nil {
		return state, err
	}
	if !ok || !models.IsValidTab(tab) {
		tab = models.TabDashboard
	}
	state.CurrentTab = tab
	return state, nil
}

// SaveCRMState replaces the stored records with state in one transaction.
func SaveCRMState(db *sql.DB, state models.CRMState) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearTables(tx); err != nil {
		return err
	}
	for i := range state.Contacts {
		if err := insertContact(tx, &state.Contacts[i], i); err != nil {
			return err
		}
	}
	for i := range state.Deals {
		if err := insertDeal(tx, &state.Deals[i], i); err != nil {
			return err
		}
	}
	for i := range state.Activity {
		if err := insertActivity(tx, &state.Activity[i]); err != nil {
			return err
		}
	}

	tab := state.CurrentTab
	if !models.IsValidTab(tab) {
		tab = models.TabDashboard
	}
	if _, err := tx.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, settingCurrentTab, tab); err != nil {
		return err
	}

	return tx.Commit()
}

// ResetCRM deletes all contacts, deals and activity.
func ResetCRM(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearTables(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearTables(tx *sql.Tx) error {
	for _, table := range []string{"contacts", "deals", "activity"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
