// ABOUTME: Shared fakes for session tests
// ABOUTME: Scripted gateway, event recorder and in-memory tour store
package session

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/gateway"
	"github.com/harperreed/salesflow/models"
)

// newMockClock returns a mock clock set to a realistic time, so timestamp
// ids are non-trivial.
func newMockClock() *clock.Mock {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	return mock
}

type call struct {
	System string
	User   string
}

// scriptedGateway returns queued replies in order. When block is set each
// call waits on it before answering.
type scriptedGateway struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []call
	block   chan struct{}
	entered chan struct{}
}

func (g *scriptedGateway) Complete(ctx context.Context, system, user string, history *gateway.History) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, call{System: system, User: user})
	block, entered := g.block, g.entered
	g.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	reply := ""
	if len(g.replies) > 0 {
		reply, g.replies = g.replies[0], g.replies[1:]
	}
	if history != nil {
		history.Append(
			models.Message{Role: models.RoleUser, Content: user},
			models.Message{Role: models.RoleAssistant, Content: reply},
		)
	}
	return reply, nil
}

func (g *scriptedGateway) lastCall() call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

type recorder struct {
	mu     sync.Mutex
	events []agent.Event
}

func (r *recorder) Emit(e agent.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// messages returns assistant message texts in order.
func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Type != agent.EventMessage {
			continue
		}
		if p, ok := e.Payload.(agent.MessagePayload); ok && p.Role == models.RoleAssistant {
			out = append(out, p.Text)
		}
	}
	return out
}

func (r *recorder) has(typ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

type memStore struct {
	mu      sync.Mutex
	videos  []models.Video
	pdfs    []models.PDF
	intents []models.Intent
	saved   []models.TourState
	byID    map[string]models.TourState
}

func (m *memStore) Videos() ([]models.Video, error) { return m.videos, nil }
func (m *memStore) PDFs() ([]models.PDF, error)     { return m.pdfs, nil }
func (m *memStore) Intents() ([]models.Intent, error) {
	return m.intents, nil
}

func (m *memStore) TourState(id string) (models.TourState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	return s, ok, nil
}

func (m *memStore) SaveTourState(id string, s models.TourState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	if m.byID == nil {
		m.byID = make(map[string]models.TourState)
	}
	m.byID[id] = s
	return nil
}

type memPersister struct {
	mu    sync.Mutex
	saves int
	last  models.CRMState
}

func (p *memPersister) SaveCRMState(s models.CRMState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	p.last = s
	return nil
}
