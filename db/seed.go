// ABOUTME: Demo seed data for a fresh CRM
// ABOUTME: Parses the embedded YAML fixture and loads it into empty databases
package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/salesflow/models"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Contacts []models.Contact `yaml:"contacts"`
	Deals    []models.Deal    `yaml:"deals"`
	Activity []string         `yaml:"activity"`
}

// SeedState returns the demo's starting data. Activity entries are spaced
// one minute apart ending at now.
func SeedState(now time.Time) (models.CRMState, error) {
	var seed seedFile
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return models.CRMState{}, fmt.Errorf("failed to parse seed data: %w", err)
	}

	state := models.CRMState{
		Contacts:   seed.Contacts,
		Deals:      seed.Deals,
		CurrentTab: models.TabDashboard,
	}
	for i, text := range seed.Activity {
		at := now.Add(-time.Duration(len(seed.Activity)-1-i) * time.Minute)
		state.Activity = append(state.Activity, models.Activity{
			ID:        fmt.Sprintf("seed-%d", i+1),
			Text:      text,
			CreatedAt: at,
		})
	}
	return state, nil
}

// SeedIfEmpty loads the demo data when there are no contacts or deals yet.
// It reports whether anything was written.
func SeedIfEmpty(db *sql.DB) (bool, error) {
	var n int
	if err := db.QueryRow(`SELECT (SELECT COUNT(*) FROM contacts) + (SELECT COUNT(*) FROM deals)`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	state, err := SeedState(time.Now())
	if err != nil {
		return false, err
	}
	if err := SaveCRMState(db, state); err != nil {
		return false, err
	}
	return true, nil
}
