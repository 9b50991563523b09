// ABOUTME: Persistence adapters for session state
// ABOUTME: Saves CRM snapshots to SQLite and tour progress to the charm store
package session

import (
	"database/sql"

	"github.com/harperreed/salesflow/db"
	"github.com/harperreed/salesflow/models"
)

// CRMPersister stores a CRM snapshot after every change.
type CRMPersister interface {
	SaveCRMState(models.CRMState) error
}

// SQLPersister writes CRM snapshots to the SQLite store.
type SQLPersister struct {
	DB *sql.DB
}

func (p SQLPersister) SaveCRMState(state models.CRMState) error {
	return db.SaveCRMState(p.DB, state)
}

// TourStore is the content library plus tour progress storage. Progress is
// keyed by tour id.
type TourStore interface {
	Videos() ([]models.Video, error)
	PDFs() ([]models.PDF, error)
	Intents() ([]models.Intent, error)
	TourState(id string) (models.TourState, bool, error)
	SaveTourState(id string, state models.TourState) error
}
