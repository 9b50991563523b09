// ABOUTME: Tests for CRM and tour data models
// ABOUTME: Validates enum checks, id generation and lookup helpers
package models

import (
	"testing"
	"time"
)

func TestNewIDUsesMilliseconds(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 5_000_000, time.UTC)
	if got := NewID(now); got != now.UnixMilli() {
		t.Errorf("expected %d, got %d", now.UnixMilli(), got)
	}
}

func TestNewIDIsPositive(t *testing.T) {
	for _, now := range []time.Time{time.Unix(0, 0), time.Unix(-60, 0)} {
		if got := NewID(now); got < 1 {
			t.Errorf("NewID(%v) = %d, want a positive id", now, got)
		}
	}
}

func TestEnumValidation(t *testing.T) {
	if !IsValidStatus(StatusCustomer) || IsValidStatus("vip") {
		t.Error("status validation mismatch")
	}
	if !IsValidStage(StageWon) || IsValidStage("closed_won") {
		t.Error("stage validation mismatch")
	}
	if !IsValidTab(TabDeals) || IsValidTab("reports") {
		t.Error("tab validation mismatch")
	}
}

func TestFindHelpers(t *testing.T) {
	state := CRMState{
		Contacts: []Contact{{ID: 1, Name: "Sarah"}},
		Deals:    []Deal{{ID: 2, Name: "Enterprise", ContactID: 1}},
	}

	if c := state.FindContact(1); c == nil || c.Name != "Sarah" {
		t.Errorf("expected Sarah, got %+v", c)
	}
	if state.FindContact(99) != nil {
		t.Error("expected nil for unknown contact")
	}

	d := state.FindDeal(2)
	if d == nil {
		t.Fatal("expected deal")
	}
	d.Stage = StageWon
	if state.Deals[0].Stage != StageWon {
		t.Error("FindDeal should return a pointer into the slice")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	state := CRMState{Contacts: []Contact{{ID: 1, Name: "Sarah"}}}
	clone := state.Clone()
	clone.Contacts[0].Name = "Changed"

	if state.Contacts[0].Name != "Sarah" {
		t.Error("clone shares backing array with original")
	}
}
