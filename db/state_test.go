// ABOUTME: Tests for whole-state persistence and seeding
// ABOUTME: Verifies round trips, resets and the seed fixture
package db

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/harperreed/salesflow/models"
)

func TestSaveAndLoadCRMState(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	want := models.CRMState{
		Contacts: []models.Contact{
			{ID: 5, Name: "Zed", Status: models.StatusLead},
			{ID: 2, Name: "Amy", Company: "Acme", Status: models.StatusCustomer},
		},
		Deals: []models.Deal{
			{ID: 9, Name: "Renewal", ContactID: 2, Value: 500, Stage: models.StageNegotiation},
		},
		Activity: []models.Activity{
			{ID: "a1", Text: "<strong>Zed</strong> was added as a lead", CreatedAt: now},
			{ID: "a2", Text: "second", CreatedAt: now.Add(time.Second)},
		},
		CurrentTab: models.TabDeals,
		Highlight:  "deal-9",
	}

	if err := SaveCRMState(db, want); err != nil {
		t.Fatalf("SaveCRMState failed: %v", err)
	}
	got, err := LoadCRMState(db)
	if err != nil {
		t.Fatalf("LoadCRMState failed: %v", err)
	}

	want.Highlight = ""
	opts := cmp.Options{cmpopts.EquateApproxTime(time.Millisecond)}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	// Saving again replaces rather than appends.
	want.Contacts = want.Contacts[:1]
	if err := SaveCRMState(db, want); err != nil {
		t.Fatalf("second SaveCRMState failed: %v", err)
	}
	got, _ = LoadCRMState(db)
	if len(got.Contacts) != 1 {
		t.Errorf("Expected 1 contact after replace, got %d", len(got.Contacts))
	}
}

func TestLoadEmptyDefaultsToDashboard(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	state, err := LoadCRMState(db)
	if err != nil {
		t.Fatalf("LoadCRMState failed: %v", err)
	}
	if state.CurrentTab != models.TabDashboard {
		t.Errorf("Expected dashboard tab, got %s", state.CurrentTab)
	}
	if len(state.Contacts) != 0 || len(state.Deals) != 0 || len(state.Activity) != 0 {
		t.Errorf("Expected empty state, got %+v", state)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seeded, err := SeedIfEmpty(db)
	if err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}
	if !seeded {
		t.Fatal("Expected fresh database to be seeded")
	}

	state, err := LoadCRMState(db)
	if err != nil {
		t.Fatalf("LoadCRMState failed: %v", err)
	}
	if len(state.Contacts) != 3 || len(state.Deals) != 2 || len(state.Activity) != 3 {
		t.Fatalf("Unexpected seed sizes: %d contacts, %d deals, %d activity",
			len(state.Contacts), len(state.Deals), len(state.Activity))
	}
	if state.Contacts[0].Name != "Sarah Johnson" || state.Contacts[0].Phone != "(555) 123-4567" {
		t.Errorf("Unexpected first contact: %+v", state.Contacts[0])
	}
	if state.Deals[0].ContactID != 1 || state.Deals[0].Value != 50000 {
		t.Errorf("Unexpected first deal: %+v", state.Deals[0])
	}
	if state.Activity[2].Text != "<strong>Michael Chen</strong> was added as a prospect" {
		t.Errorf("Unexpected last activity: %q", state.Activity[2].Text)
	}

	seeded, err = SeedIfEmpty(db)
	if err != nil || seeded {
		t.Errorf("Expected second seed to be skipped, got %v, %v", seeded, err)
	}
}

func TestResetCRM(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := SeedIfEmpty(db); err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}
	if err := ResetCRM(db); err != nil {
		t.Fatalf("ResetCRM failed: %v", err)
	}
	state, _ := LoadCRMState(db)
	if len(state.Contacts)+len(state.Deals)+len(state.Activity) != 0 {
		t.Errorf("Expected empty state after reset, got %+v", state)
	}
}

func TestListActivityLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	base := time.Now()
	for i := 0; i < 5; i++ {
		entry := &models.Activity{Text: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := AddActivity(db, entry); err != nil {
			t.Fatalf("AddActivity failed: %v", err)
		}
	}

	recent, err := ListActivity(db, 2)
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Text != "d" || recent[1].Text != "e" {
		t.Errorf("Unexpected recent activity: %+v", recent)
	}
}

func TestSettings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, ok, _ := GetSetting(db, "missing"); ok {
		t.Error("Expected missing setting")
	}
	if err := SetSetting(db, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := SetSetting(db, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := GetSetting(db, "k")
	if err != nil || !ok || v != "v2" {
		t.Errorf("Expected v2, got %q %v %v", v, ok, err)
	}
}
