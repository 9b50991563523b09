// ABOUTME: Closed set of UI actions the assistant may request
// ABOUTME: Each action is a concrete type; Action is sealed to this package
package agent

// Action names as they appear in assistant replies.
const (
	ActionSwitchTab        = "SWITCH_TAB"
	ActionAddContact       = "ADD_CONTACT"
	ActionAddDeal          = "ADD_DEAL"
	ActionMoveDeal         = "MOVE_DEAL"
	ActionHighlightContact = "HIGHLIGHT_CONTACT"
	ActionHighlightDeal    = "HIGHLIGHT_DEAL"
	ActionShowContact      = "SHOW_CONTACT"
	ActionShowVideo        = "SHOW_VIDEO"
	ActionShowPDF          = "SHOW_PDF"
	ActionFitAssessment    = "FIT_ASSESSMENT"
)

// Action is one decoded instruction. The unexported method keeps the set closed.
type Action interface {
	Kind() string
	action()
}

type SwitchTab struct {
	Tab string `json:"tab"`
}

type AddContact struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

type AddDeal struct {
	Name      string `json:"name"`
	ContactID int64  `json:"contactId"`
	Value     int64  `json:"value"`
	Stage     string `json:"stage"`

	// Placeholder names the owner in the activity feed when ContactID does
	// not resolve. Empty means "contact".
	Placeholder string `json:"-"`
}

type MoveDeal struct {
	DealID int64  `json:"dealId"`
	Stage  string `json:"stage"`
}

type HighlightContact struct {
	ContactID int64 `json:"contactId"`
}

type HighlightDeal struct {
	DealID int64 `json:"dealId"`
}

type ShowContact struct {
	ContactID int64 `json:"contactId"`
}

// ShowVideo refers to a video by its position in the library.
type ShowVideo struct {
	VideoID   int
	Timestamp string
}

// ShowPDF refers to a PDF by its position in the library.
type ShowPDF struct {
	PDFID int
}

type AssessFit struct{}

func (SwitchTab) Kind() string        { return ActionSwitchTab }
func (AddContact) Kind() string       { return ActionAddContact }
func (AddDeal) Kind() string          { return ActionAddDeal }
func (MoveDeal) Kind() string         { return ActionMoveDeal }
func (HighlightContact) Kind() string { return ActionHighlightContact }
func (HighlightDeal) Kind() string    { return ActionHighlightDeal }
func (ShowContact) Kind() string      { return ActionShowContact }
func (ShowVideo) Kind() string        { return ActionShowVideo }
func (ShowPDF) Kind() string          { return ActionShowPDF }
func (AssessFit) Kind() string        { return ActionFitAssessment }

func (SwitchTab) action()        {}
func (AddContact) action()       {}
func (AddDeal) action()          {}
func (MoveDeal) action()         {}
func (HighlightContact) action() {}
func (HighlightDeal) action()    {}
func (ShowContact) action()      {}
func (ShowVideo) action()        {}
func (ShowPDF) action()          {}
func (AssessFit) action()        {}
