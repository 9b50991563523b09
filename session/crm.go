// ABOUTME: Conversation controller for the CRM demo
// ABOUTME: Runs one prompt-reply-dispatch cycle at a time and handles form input
package session

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/gateway"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/prompt"
)

const (
	msgReset     = "Demo reset! All data has been cleared. What would you like me to show you?"
	msgRetryHint = "Please try again or check your API key."
)

// Completer is the model gateway as sessions use it.
type Completer interface {
	Complete(ctx context.Context, system, user string, history *gateway.History) (string, error)
}

type CRMConfig struct {
	Gateway      Completer
	Decoder      agent.Decoder
	Dispatch     agent.Options
	Persister    CRMPersister
	HistoryLimit int
	Logger       *zap.Logger
}

// Turn records what one submission did.
type Turn struct {
	Reply     string
	Narration string
	Actions   []agent.Action
	Ignored   []string
}

type CRMSession struct {
	id         string
	state      *agent.State[models.CRMState]
	history    *gateway.History
	gateway    Completer
	decoder    agent.Decoder
	dispatcher *agent.CRMDispatcher
	persister  CRMPersister
	hub        *Hub
	logger     *zap.Logger

	busy atomic.Bool
}

func NewCRMSession(initial models.CRMState, cfg CRMConfig) *CRMSession {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if initial.CurrentTab == "" {
		initial.CurrentTab = models.TabDashboard
	}
	id := uuid.New().String()

	dispatch := cfg.Dispatch
	if dispatch.Logger == nil {
		dispatch.Logger = logger
	}

	return &CRMSession{
		id:         id,
		state:      agent.NewState(initial),
		history:    gateway.NewHistory(cfg.HistoryLimit),
		gateway:    cfg.Gateway,
		decoder:    cfg.Decoder,
		dispatcher: agent.NewCRMDispatcher(dispatch),
		persister:  cfg.Persister,
		hub:        NewHub(),
		logger:     logger.With(zap.String("session", id)),
	}
}

func (s *CRMSession) ID() string { return s.id }

// Events returns the session's live event hub.
func (s *CRMSession) Events() *Hub { return s.hub }

func (s *CRMSession) History() *gateway.History { return s.history }

// Busy reports whether a reply is in flight.
func (s *CRMSession) Busy() bool { return s.busy.Load() }

// Snapshot returns a deep copy of the current state.
func (s *CRMSession) Snapshot() models.CRMState {
	var out models.CRMState
	s.state.View(func(st models.CRMState) { out = st.Clone() })
	return out
}

// Submit sends message to the assistant and executes its reply. Gateway
// failures are shown as an assistant message and returned; state is left
// untouched. Malformed action blocks are logged and the narration is still
// shown.
func (s *CRMSession) Submit(ctx context.Context, message string, emit agent.Emitter) (*Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	out := tee(emit, s.hub)
	out.Emit(userMessage(message))
	out.Emit(agent.Event{Type: agent.EventThinking, Target: "start"})
	defer out.Emit(agent.Event{Type: agent.EventThinking, Target: "stop"})

	system := prompt.CRM(s.Snapshot())
	reply, err := s.gateway.Complete(ctx, system, message, s.history)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("model request failed", zap.Error(err))
		out.Emit(agent.AssistantMessage(fmt.Sprintf("I encountered an error: %s\n\n%s", gateway.UserMessage(err), msgRetryHint)))
		return nil, err
	}

	decoded, derr := s.decoder.DecodeCRM(reply)
	if derr != nil {
		fields := []zap.Field{zap.Error(derr), zap.Int("reply_length", len(reply))}
		if errors.Is(derr, agent.ErrMalformedActions) {
			s.logger.Warn("malformed action block, showing narration only", fields...)
		} else {
			s.logger.Warn("rejected action block", fields...)
		}
	}
	if len(decoded.Ignored) > 0 {
		s.logger.Info("ignored unknown actions", zap.Strings("actions", decoded.Ignored))
	}

	turn := &Turn{Reply: reply, Narration: decoded.Narration, Actions: decoded.Actions, Ignored: decoded.Ignored}

	if err := s.dispatcher.Execute(ctx, s.state, decoded.Actions, out); err != nil {
		s.persist()
		return turn, err
	}
	if decoded.Narration != "" {
		out.Emit(agent.AssistantMessage(decoded.Narration))
	}
	s.persist()
	return turn, nil
}

// Perform executes actions directly, without the assistant.
func (s *CRMSession) Perform(ctx context.Context, emit agent.Emitter, actions ...agent.Action) error {
	err := s.dispatcher.Execute(ctx, s.state, actions, tee(emit, s.hub))
	s.persist()
	return err
}

type ContactForm struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

func (f ContactForm) validate() error {
	if err := required("name", f.Name); err != nil {
		return err
	}
	if err := required("company", f.Company); err != nil {
		return err
	}
	if err := required("email", f.Email); err != nil {
		return err
	}
	if f.Status != "" && !models.IsValidStatus(f.Status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("must be one of %s", strings.Join(models.Statuses, ", "))}
	}
	return nil
}

// AddContact validates the form and adds the contact exactly as the
// assistant would.
func (s *CRMSession) AddContact(form ContactForm, emit agent.Emitter) (models.Contact, error) {
	form = ContactForm{
		Name:    strings.TrimSpace(form.Name),
		Company: strings.TrimSpace(form.Company),
		Email:   strings.TrimSpace(form.Email),
		Phone:   strings.TrimSpace(form.Phone),
		Status:  strings.TrimSpace(form.Status),
	}
	if err := form.validate(); err != nil {
		return models.Contact{}, err
	}

	created, _ := s.dispatcher.Apply(s.state, agent.AddContact{
		Name:    form.Name,
		Company: form.Company,
		Email:   form.Email,
		Phone:   form.Phone,
		Status:  form.Status,
	}, tee(emit, s.hub)).(models.Contact)
	s.persist()
	return created, nil
}

type DealForm struct {
	Name      string `json:"name"`
	ContactID int64  `json:"contactId"`
	Value     int64  `json:"value"`
	Stage     string `json:"stage"`
}

func (f DealForm) validate() error {
	if err := required("name", f.Name); err != nil {
		return err
	}
	if f.ContactID == 0 {
		return &ValidationError{Field: "contactId", Message: "is required"}
	}
	if f.Value < 0 {
		return &ValidationError{Field: "value", Message: "must not be negative"}
	}
	if f.Stage != "" && !models.IsValidStage(f.Stage) {
		return &ValidationError{Field: "stage", Message: fmt.Sprintf("must be one of %s", strings.Join(models.Stages, ", "))}
	}
	return nil
}

// AddDeal validates the form and adds the deal. An unresolved contact is
// named "Unknown" in the activity feed.
func (s *CRMSession) AddDeal(form DealForm, emit agent.Emitter) (models.Deal, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Stage = strings.TrimSpace(form.Stage)
	if err := form.validate(); err != nil {
		return models.Deal{}, err
	}

	created, _ := s.dispatcher.Apply(s.state, agent.AddDeal{
		Name:        form.Name,
		ContactID:   form.ContactID,
		Value:       form.Value,
		Stage:       form.Stage,
		Placeholder: "Unknown",
	}, tee(emit, s.hub)).(models.Deal)
	s.persist()
	return created, nil
}

// Reset clears records, activity and conversation history.
func (s *CRMSession) Reset(emit agent.Emitter) {
	out := tee(emit, s.hub)
	s.dispatcher.ClearHighlight(s.state, out)
	s.state.Update(func(st *models.CRMState) {
		st.Contacts = nil
		st.Deals = nil
		st.Activity = nil
	})
	s.history.Reset()
	s.persist()

	for _, target := range []string{agent.TargetDashboard, agent.TargetContacts, agent.TargetDeals} {
		out.Emit(agent.Event{Type: agent.EventRender, Target: target})
	}
	out.Emit(agent.AssistantMessage(msgReset))
}

// Close stops scheduled work and disconnects subscribers.
func (s *CRMSession) Close() {
	s.dispatcher.Stop()
	s.hub.Close()
}

func (s *CRMSession) persist() {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveCRMState(s.Snapshot()); err != nil {
		s.logger.Error("failed to persist CRM state", zap.Error(err))
	}
}

func userMessage(text string) agent.Event {
	return agent.Event{Type: agent.EventMessage, Payload: agent.MessagePayload{
		Role: models.RoleUser,
		Text: text,
		HTML: "<p>" + html.EscapeString(text) + "</p>",
	}}
}
