// ABOUTME: Executes CRM actions against owned session state
// ABOUTME: Handles pacing, activity logging and the self-clearing highlight
package agent

import (
	"context"
	"fmt"
	"html"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/models"
)

const (
	DefaultPace         = 500 * time.Millisecond
	DefaultHighlightTTL = 3 * time.Second

	highlightTask = "highlight"
)

// Options configures a CRMDispatcher. Pace is the pause between successive
// actions of one batch; zero disables it.
type Options struct {
	Clock        clock.Clock
	Pace         time.Duration
	HighlightTTL time.Duration
	Logger       *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Pace:         DefaultPace,
		HighlightTTL: DefaultHighlightTTL,
	}
}

// CRMDispatcher applies decoded actions. Each session owns one, since the
// highlight timer belongs to the session's state.
type CRMDispatcher struct {
	clock        clock.Clock
	pace         time.Duration
	highlightTTL time.Duration
	scheduler    *Scheduler
	logger       *zap.Logger

	// highlightGen is only touched under the state lock.
	highlightGen uint64

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func NewCRMDispatcher(opts Options) *CRMDispatcher {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.HighlightTTL <= 0 {
		opts.HighlightTTL = DefaultHighlightTTL
	}
	if opts.Pace < 0 {
		opts.Pace = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &CRMDispatcher{
		clock:        opts.Clock,
		pace:         opts.Pace,
		highlightTTL: opts.HighlightTTL,
		scheduler:    NewScheduler(opts.Clock),
		logger:       opts.Logger.Named("dispatcher"),
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(opts.Clock.Now().UnixNano())), 0),
	}
}

// Execute applies actions in order, pausing between them. It stops early
// only when ctx is cancelled.
func (d *CRMDispatcher) Execute(ctx context.Context, holder *State[models.CRMState], actions []Action, emit Emitter) error {
	for i, a := range actions {
		if i > 0 && d.pace > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.clock.After(d.pace):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		d.Apply(holder, a, emit)
	}
	return nil
}

// Apply executes one action and returns the contact or deal it created or
// changed, copied under the state lock, or nil. Actions never fail: anything
// unresolvable is a no-op. Events are emitted after the lock is released.
func (d *CRMDispatcher) Apply(holder *State[models.CRMState], a Action, emit Emitter) any {
	emit = emitOrDiscard(emit)

	var events []Event
	var pending *pendingClear
	holder.Update(func(s *models.CRMState) {
		events, pending = d.apply(s, a)
	})

	d.logger.Debug("applied action", zap.String("action", a.Kind()), zap.Int("events", len(events)))

	if pending != nil {
		d.scheduleHighlightClear(holder, *pending, emit)
	}
	var record any
	for _, e := range events {
		if record == nil && e.Type == EventRender {
			record = e.Payload
		}
		emit.Emit(e)
	}
	return record
}

type pendingClear struct {
	target string
	gen    uint64
}

func (d *CRMDispatcher) apply(s *models.CRMState, a Action) ([]Event, *pendingClear) {
	switch a := a.(type) {
	case SwitchTab:
		if !models.IsValidTab(a.Tab) {
			return nil, nil
		}
		s.CurrentTab = a.Tab
		return []Event{{Type: EventSwitchTab, Target: a.Tab}}, nil

	case AddContact:
		status := a.Status
		if !models.IsValidStatus(status) {
			status = models.StatusLead
		}
		contact := models.Contact{
			ID:      d.nextID(func(id int64) bool { return s.FindContact(id) != nil }),
			Name:    a.Name,
			Company: a.Company,
			Email:   a.Email,
			Phone:   a.Phone,
			Status:  status,
		}
		s.Contacts = append(s.Contacts, contact)
		d.logActivity(s, fmt.Sprintf("<strong>%s</strong> was added as a %s", html.EscapeString(contact.Name), status))
		return renderEvents(TargetContacts, contact), nil

	case AddDeal:
		stage := a.Stage
		if !models.IsValidStage(stage) {
			stage = models.StageProspecting
		}
		deal := models.Deal{
			ID:        d.nextID(func(id int64) bool { return s.FindDeal(id) != nil }),
			Name:      a.Name,
			ContactID: a.ContactID,
			Value:     a.Value,
			Stage:     stage,
		}
		s.Deals = append(s.Deals, deal)
		company := a.Placeholder
		if company == "" {
			company = "contact"
		}
		if c := s.FindContact(deal.ContactID); c != nil && c.Company != "" {
			company = c.Company
		}
		d.logActivity(s, fmt.Sprintf("Deal \"<strong>%s</strong>\" created for %s", html.EscapeString(deal.Name), html.EscapeString(company)))
		return renderEvents(TargetDeals, deal), nil

	case MoveDeal:
		deal := s.FindDeal(a.DealID)
		if deal == nil || !models.IsValidStage(a.Stage) {
			return nil, nil
		}
		deal.Stage = a.Stage
		d.logActivity(s, fmt.Sprintf("Deal \"<strong>%s</strong>\" moved to %s", html.EscapeString(deal.Name), a.Stage))
		return renderEvents(TargetDeals, *deal), nil

	case HighlightContact:
		var target string
		if s.FindContact(a.ContactID) != nil {
			target = ContactKey(a.ContactID)
		}
		return d.highlight(s, target)

	case HighlightDeal:
		var target string
		if s.FindDeal(a.DealID) != nil {
			target = DealKey(a.DealID)
		}
		return d.highlight(s, target)

	case ShowContact:
		c := s.FindContact(a.ContactID)
		if c == nil {
			return nil, nil
		}
		return []Event{{Type: EventShowContact, Target: ContactKey(c.ID), Payload: *c}}, nil
	}

	d.logger.Warn("action not applicable to CRM", zap.String("action", a.Kind()))
	return nil, nil
}

// highlight clears any prior highlight and, when target is non-empty,
// highlights it. The caller schedules the returned clear.
func (d *CRMDispatcher) highlight(s *models.CRMState, target string) ([]Event, *pendingClear) {
	var events []Event
	if s.Highlight != "" {
		d.scheduler.Cancel(highlightTask)
		events = append(events, Event{Type: EventClearHighlight, Target: s.Highlight})
		s.Highlight = ""
	}
	if target == "" {
		return events, nil
	}
	d.highlightGen++
	s.Highlight = target
	return append(events, Event{Type: EventHighlight, Target: target}), &pendingClear{target: target, gen: d.highlightGen}
}

func (d *CRMDispatcher) scheduleHighlightClear(holder *State[models.CRMState], pc pendingClear, emit Emitter) {
	target := pc.target
	d.scheduler.Schedule(highlightTask, d.highlightTTL, func() {
		cleared := false
		holder.Update(func(s *models.CRMState) {
			if d.highlightGen == pc.gen && s.Highlight == target {
				s.Highlight = ""
				cleared = true
			}
		})
		if cleared {
			emit.Emit(Event{Type: EventClearHighlight, Target: target})
		}
	})
}

// ClearHighlight removes the current highlight, if any, and cancels its
// scheduled clear.
func (d *CRMDispatcher) ClearHighlight(holder *State[models.CRMState], emit Emitter) {
	emit = emitOrDiscard(emit)
	var events []Event
	holder.Update(func(s *models.CRMState) {
		events, _ = d.highlight(s, "")
	})
	d.scheduler.Cancel(highlightTask)
	for _, e := range events {
		emit.Emit(e)
	}
}

// HighlightPending reports whether a highlight clear is scheduled.
func (d *CRMDispatcher) HighlightPending() bool {
	return d.scheduler.Pending(highlightTask)
}

// Stop cancels scheduled work. The dispatcher must not be used afterwards.
func (d *CRMDispatcher) Stop() {
	d.scheduler.Stop()
}

// nextID returns a timestamp id, stepping forward past ids already taken.
func (d *CRMDispatcher) nextID(taken func(int64) bool) int64 {
	id := models.NewID(d.clock.Now())
	for taken(id) {
		id++
	}
	return id
}

func (d *CRMDispatcher) logActivity(s *models.CRMState, text string) {
	now := d.clock.Now()
	d.entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), d.entropy)
	d.entropyMu.Unlock()

	s.Activity = append(s.Activity, models.Activity{
		ID:        id.String(),
		Text:      text,
		CreatedAt: now,
	})
}

func renderEvents(target string, record any) []Event {
	return []Event{
		{Type: EventRender, Target: target, Payload: record},
		{Type: EventRender, Target: TargetDashboard},
	}
}

func ContactKey(id int64) string { return fmt.Sprintf("contact-%d", id) }
func DealKey(id int64) string    { return fmt.Sprintf("deal-%d", id) }
