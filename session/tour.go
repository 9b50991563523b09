// ABOUTME: Conversation controller for the discovery tour
// ABOUTME: Drives intent selection, guided chat and the closing fit assessment
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/gateway"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/prompt"
)

// MaxIntents is how many intents the intent screen offers.
const MaxIntents = 4

const (
	statusFinding   = "Finding relevant content..."
	statusAnalyzing = "Analyzing your question..."

	msgIntentError = "I encountered an error. Please try asking your question in the chat below."
	msgCustomError = "I encountered an error processing your question. Please try rephrasing it."
	msgChatError   = "I encountered an error. Please try again."

	customIntentDescription = "Custom buyer question"
)

type TourConfig struct {
	// ID identifies the visitor. Progress saved under the same id is
	// restored; empty means a fresh tour with a generated id.
	ID           string
	Gateway      Completer
	Decoder      agent.Decoder
	Clock        clock.Clock
	HistoryLimit int
	Logger       *zap.Logger
}

type TourSession struct {
	id         string
	store      TourStore
	state      *agent.State[models.TourState]
	history    *gateway.History
	gateway    Completer
	dispatcher *agent.TourDispatcher
	logger     *zap.Logger

	busy atomic.Bool
}

func NewTourSession(store TourStore, cfg TourConfig) *TourSession {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := cfg.ID
	if id == "" {
		id = uuid.New().String()
	}
	logger = logger.With(zap.String("tour", id))

	initial := models.TourState{Screen: models.ScreenLanding}
	if cfg.ID != "" {
		saved, found, err := store.TourState(id)
		switch {
		case err != nil:
			logger.Warn("failed to restore tour state", zap.Error(err))
		case found:
			initial = saved
			logger.Debug("restored tour state", zap.String("screen", saved.Screen))
		}
	}

	return &TourSession{
		id:         id,
		store:      store,
		state:      agent.NewState(initial),
		history:    gateway.NewHistory(cfg.HistoryLimit),
		gateway:    cfg.Gateway,
		dispatcher: agent.NewTourDispatcher(store, cfg.Decoder, cfg.Clock, logger),
		logger:     logger,
	}
}

func (s *TourSession) ID() string { return s.id }

func (s *TourSession) Snapshot() models.TourState {
	var out models.TourState
	s.state.View(func(st models.TourState) { out = st.Clone() })
	return out
}

// Start opens the intent screen and returns the intents on offer.
func (s *TourSession) Start() ([]models.Intent, error) {
	intents, err := s.store.Intents()
	if err != nil {
		return nil, fmt.Errorf("failed to load intents: %w", err)
	}
	if len(intents) > MaxIntents {
		intents = intents[:MaxIntents]
	}
	s.state.Update(func(st *models.TourState) {
		st.Active = true
		st.Screen = models.ScreenIntent
	})
	s.persist()
	return intents, nil
}

// SelectIntent starts the guided tour for one of the offered intents.
func (s *TourSession) SelectIntent(ctx context.Context, index int, emit agent.Emitter) error {
	intents, err := s.store.Intents()
	if err != nil {
		return fmt.Errorf("failed to load intents: %w", err)
	}
	if index < 0 || index >= len(intents) || index >= MaxIntents {
		return &ValidationError{Field: "intent", Message: fmt.Sprintf("no intent at position %d", index)}
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	intent := intents[index]
	emit = tee(emit)
	s.enterMain(intent)
	emit.Emit(agent.AssistantMessage(fmt.Sprintf("Perfect! Let me show you how we %s.", strings.ToLower(intent.Title))))
	s.dispatcher.SetStatus(s.state, statusFinding, emit)

	return s.ask(ctx, prompt.IntentOpener(intent.Title), msgIntentError, emit)
}

// SubmitCustomIntent starts the tour from the buyer's own question.
func (s *TourSession) SubmitCustomIntent(ctx context.Context, question string, emit agent.Emitter) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyMessage
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	emit = tee(emit)
	s.enterMain(models.Intent{Title: question, Description: customIntentDescription, IsCustom: true})
	emit.Emit(agent.AssistantMessage(fmt.Sprintf("Great question! Let me find the most relevant information to answer: \"%s\"", question)))
	s.dispatcher.SetStatus(s.state, statusAnalyzing, emit)

	return s.ask(ctx, question, msgCustomError, emit)
}

// Chat sends a follow-up question during the tour.
func (s *TourSession) Chat(ctx context.Context, message string, emit agent.Emitter) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	if !s.Snapshot().Active {
		return ErrTourInactive
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	emit = tee(emit)
	emit.Emit(userMessage(message))
	emit.Emit(agent.Event{Type: agent.EventThinking, Target: "start"})
	defer emit.Emit(agent.Event{Type: agent.EventThinking, Target: "stop"})

	return s.ask(ctx, message, msgChatError, emit)
}

// Restart returns the tour to the landing screen with a fresh conversation.
func (s *TourSession) Restart() {
	s.state.Replace(models.TourState{Screen: models.ScreenLanding})
	s.history.Reset()
	s.persist()
}

func (s *TourSession) enterMain(intent models.Intent) {
	s.state.Update(func(st *models.TourState) {
		st.Active = true
		st.Screen = models.ScreenMain
		st.SelectedIntent = &intent
	})
}

func (s *TourSession) ask(ctx context.Context, message, failure string, emit agent.Emitter) error {
	videos, err := s.store.Videos()
	if err != nil {
		s.logger.Warn("failed to load videos", zap.Error(err))
	}
	pdfs, err := s.store.PDFs()
	if err != nil {
		s.logger.Warn("failed to load documents", zap.Error(err))
	}

	system := prompt.Tour(prompt.TourInput{
		Videos:     videos,
		PDFs:       pdfs,
		ShownCount: len(s.Snapshot().ShownContent),
		Turns:      s.history.Len() / 2,
	})

	reply, err := s.gateway.Complete(ctx, system, message, s.history)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Error("model request failed", zap.Error(err))
		emit.Emit(agent.AssistantMessage(failure))
		return err
	}

	outcome, err := s.dispatcher.Handle(ctx, s.state, reply, emit)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		s.logger.Warn("rejected tour action", zap.Error(err), zap.Int("reply_length", len(reply)))
		emit.Emit(agent.AssistantMessage(failure))
		return err
	}
	if outcome.Finished {
		s.logger.Info("tour finished", zap.Int("shown", len(s.Snapshot().ShownContent)))
	}
	s.persist()
	return nil
}

func (s *TourSession) persist() {
	if err := s.store.SaveTourState(s.id, s.Snapshot()); err != nil {
		s.logger.Error("failed to persist tour state", zap.Error(err))
	}
}
