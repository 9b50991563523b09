// ABOUTME: Render events emitted while actions execute
// ABOUTME: The render layer subscribes through an Emitter
package agent

// Event types.
const (
	EventRender         = "render"
	EventSwitchTab      = "switch_tab"
	EventHighlight      = "highlight"
	EventClearHighlight = "clear_highlight"
	EventShowContact    = "show_contact"
	EventShowVideo      = "show_video"
	EventShowPDF        = "show_pdf"
	EventFitAssessment  = "fit_assessment"
	EventMessage        = "message"
	EventStatus         = "status"
	EventThinking       = "thinking"
)

// Render targets.
const (
	TargetDashboard = "dashboard"
	TargetContacts  = "contacts"
	TargetDeals     = "deals"
)

// Event tells the render layer what changed. Target names the view or
// element key; Payload carries the record or message when relevant.
type Event struct {
	Type    string `json:"type"`
	Target  string `json:"target,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// MessagePayload is the payload of EventMessage. HTML is the sanitised
// rendering of Text.
type MessagePayload struct {
	Role string `json:"role"`
	Text string `json:"text"`
	HTML string `json:"html,omitempty"`
}

type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(Event) {})

func emitOrDiscard(e Emitter) Emitter {
	if e == nil {
		return Discard
	}
	return e
}
