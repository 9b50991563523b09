// ABOUTME: Fan-out of session events to live subscribers
// ABOUTME: Delivers scheduled events such as highlight expiry after a request ends
package session

import (
	"sync"

	"github.com/harperreed/salesflow/agent"
)

const subscriberBuffer = 64

// Hub broadcasts events to every subscriber. Slow subscribers lose events
// rather than block the session.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan agent.Event
	nextID int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan agent.Event)}
}

// Subscribe returns a channel of events and a function that unsubscribes
// and closes it.
func (h *Hub) Subscribe() (<-chan agent.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan agent.Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *Hub) Emit(e agent.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
	h.closed = true
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// tee sends every event to each non-nil emitter.
func tee(emitters ...agent.Emitter) agent.Emitter {
	return agent.EmitterFunc(func(e agent.Event) {
		for _, em := range emitters {
			if em != nil {
				em.Emit(e)
			}
		}
	})
}
