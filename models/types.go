// ABOUTME: Data models for the CRM demo and the discovery tour
// ABOUTME: Defines contacts, deals, activity, tour content, conversation and state records
package models

import (
	"time"
)

type Contact struct {
	ID      int64  `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Company string `json:"company" yaml:"company"`
	Email   string `json:"email" yaml:"email"`
	Phone   string `json:"phone" yaml:"phone"`
	Status  string `json:"status" yaml:"status"`
}

// Deal references its contact weakly; ContactID may point at nothing.
type Deal struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	ContactID int64  `json:"contactId" yaml:"contact_id"`
	Value     int64  `json:"value" yaml:"value"` // whole currency units
	Stage     string `json:"stage" yaml:"stage"`
}

// Activity text may contain inline <strong> emphasis markup.
type Activity struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type TranscriptSegment struct {
	Timestamp     string `json:"timestamp"`
	TimeInSeconds int    `json:"timeInSeconds"`
	Speaker       string `json:"speaker"`
	Text          string `json:"text"`
}

type AnalyzedSegment struct {
	Title     string   `json:"title"`
	Timestamp string   `json:"timestamp"`
	Topics    []string `json:"topics"`
	Answers   string   `json:"answers"`
}

type Video struct {
	ID               int64               `json:"id"`
	URL              string              `json:"url"`
	Title            string              `json:"title"`
	Transcript       string              `json:"transcript"`
	Segments         []TranscriptSegment `json:"segments"`
	AnalyzedSegments []AnalyzedSegment   `json:"analyzedSegments,omitempty"`
	Tags             []string            `json:"tags"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        *time.Time          `json:"updatedAt,omitempty"`
}

type PDF struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Topics    string    `json:"topics"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

type Intent struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	RelevantContent []string `json:"relevantContent"`
	IsCustom        bool     `json:"isCustom,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ShownContent is one entry of the tour's shown-content log. Timestamp is
// the video start position and is empty for documents.
type ShownContent struct {
	Type      string    `json:"type"`
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Timestamp string    `json:"timestamp,omitempty"`
	ShownAt   time.Time `json:"shownAt"`
}

type FitAssessment struct {
	Verdict        string `json:"verdict"`
	Class          string `json:"class"`
	KeyPoints      string `json:"keyPoints"`
	Risks          string `json:"risks"`
	Recommendation string `json:"recommendation"`
}

// CRMState is everything the CRM demo renders. Highlight holds the element
// key ("contact-<id>" or "deal-<id>") of the single highlighted row, if any.
type CRMState struct {
	Contacts   []Contact  `json:"contacts"`
	Deals      []Deal     `json:"deals"`
	Activity   []Activity `json:"activity"`
	CurrentTab string     `json:"currentTab"`
	Highlight  string     `json:"highlight,omitempty"`
}

type TourState struct {
	Active         bool           `json:"active"`
	Screen         string         `json:"screen"`
	Status         string         `json:"status"`
	SelectedIntent *Intent        `json:"selectedIntent,omitempty"`
	ShownContent   []ShownContent `json:"shownContent"`
	Assessment     *FitAssessment `json:"assessment,omitempty"`
}

// Contact status constants.
const (
	StatusLead     = "lead"
	StatusProspect = "prospect"
	StatusCustomer = "customer"
)

// Deal stage constants, in pipeline order.
const (
	StageProspecting = "prospecting"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageWon         = "won"
)

// Tab constants.
const (
	TabDashboard = "dashboard"
	TabContacts  = "contacts"
	TabDeals     = "deals"
)

// Tour screen constants.
const (
	ScreenLanding = "landing"
	ScreenIntent  = "intent"
	ScreenMain    = "main"
	ScreenFit     = "fit"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Shown content types.
const (
	ContentVideo = "video"
	ContentPDF   = "pdf"
)

// Fit classes.
const (
	FitGood  = "good"
	FitMixed = "mixed"
	FitPoor  = "poor"
)

var (
	Statuses = []string{StatusLead, StatusProspect, StatusCustomer}
	Stages   = []string{StageProspecting, StageProposal, StageNegotiation, StageWon}
	Tabs     = []string{TabDashboard, TabContacts, TabDeals}
)

func IsValidStatus(s string) bool { return contains(Statuses, s) }
func IsValidStage(s string) bool  { return contains(Stages, s) }
func IsValidTab(s string) bool    { return contains(Tabs, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// NewID returns a record identifier derived from the creation time in
// milliseconds. Two records created within the same millisecond collide.
// Ids are always positive; zero means "no record" in references.
func NewID(now time.Time) int64 {
	if id := now.UnixMilli(); id > 0 {
		return id
	}
	return 1
}

// FindContact returns the contact with the given id, or nil.
func (s *CRMState) FindContact(id int64) *Contact {
	for i := range s.Contacts {
		if s.Contacts[i].ID == id {
			return &s.Contacts[i]
		}
	}
	return nil
}

// FindDeal returns the deal with the given id, or nil.
func (s *CRMState) FindDeal(id int64) *Deal {
	for i := range s.Deals {
		if s.Deals[i].ID == id {
			return &s.Deals[i]
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand to readers.
func (s CRMState) Clone() CRMState {
	out := s
	out.Contacts = append([]Contact(nil), s.Contacts...)
	out.Deals = append([]Deal(nil), s.Deals...)
	out.Activity = append([]Activity(nil), s.Activity...)
	return out
}

func (s TourState) Clone() TourState {
	out := s
	out.ShownContent = append([]ShownContent(nil), s.ShownContent...)
	if s.SelectedIntent != nil {
		intent := *s.SelectedIntent
		out.SelectedIntent = &intent
	}
	if s.Assessment != nil {
		a := *s.Assessment
		out.Assessment = &a
	}
	return out
}
