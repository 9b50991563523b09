// ABOUTME: Typed access to the tour content library stored in charm KV
// ABOUTME: Videos, documents, intents and tour state live under fixed keys
package charm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/salesflow/models"
)

// Storage keys. These match the keys the browser build of the tour used, so
// exported data moves between the two unchanged.
const (
	KeyVideos    = "discovery_tour_videos"
	KeyPDFs      = "discovery_tour_pdfs"
	KeyIntents   = "discovery_tour_intents"
	KeyTourState = "discovery_tour_state"
)

// ErrCorrupt wraps values that are present but not valid JSON.
var ErrCorrupt = errors.New("corrupt library value")

func (c *Client) Videos() ([]models.Video, error) {
	videos := []models.Video{}
	if _, err := c.getJSON(KeyVideos, &videos); err != nil {
		return []models.Video{}, err
	}
	return videos, nil
}

func (c *Client) SaveVideos(videos []models.Video) error {
	return c.setJSON(KeyVideos, videos)
}

func (c *Client) PDFs() ([]models.PDF, error) {
	pdfs := []models.PDF{}
	if _, err := c.getJSON(KeyPDFs, &pdfs); err != nil {
		return []models.PDF{}, err
	}
	return pdfs, nil
}

func (c *Client) SavePDFs(pdfs []models.PDF) error {
	return c.setJSON(KeyPDFs, pdfs)
}

func (c *Client) Intents() ([]models.Intent, error) {
	intents := []models.Intent{}
	if _, err := c.getJSON(KeyIntents, &intents); err != nil {
		return []models.Intent{}, err
	}
	return intents, nil
}

func (c *Client) SaveIntents(intents []models.Intent) error {
	return c.setJSON(KeyIntents, intents)
}

// TourState returns the tour progress saved for one visitor and whether any
// existed.
func (c *Client) TourState(id string) (models.TourState, bool, error) {
	var state models.TourState
	found, err := c.getJSON(tourStateKey(id), &state)
	return state, found, err
}

func (c *Client) SaveTourState(id string, state models.TourState) error {
	return c.setJSON(tourStateKey(id), state)
}

func tourStateKey(id string) string {
	return KeyTourState + ":" + id
}

// getJSON decodes key into v. A missing key leaves v untouched.
func (c *Client) getJSON(key string, v any) (bool, error) {
	data, err := c.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

func (c *Client) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.Set([]byte(key), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
