// ABOUTME: Per-browser discovery tour sessions keyed by a cookie
// ABOUTME: Idle tours are evicted when new ones are looked up
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/harperreed/salesflow/session"
)

const (
	tourCookie      = "salesflow_tour"
	defaultTourIdle = time.Hour
)

type tourEntry struct {
	tour     *session.TourSession
	lastSeen time.Time
}

type tourRegistry struct {
	mu      sync.Mutex
	entries map[string]*tourEntry
	clock   clock.Clock
	idle    time.Duration
	create  func(key string) *session.TourSession
}

// create builds the tour for a visitor key, restoring saved progress.
func newTourRegistry(c clock.Clock, idle time.Duration, create func(key string) *session.TourSession) *tourRegistry {
	if idle <= 0 {
		idle = defaultTourIdle
	}
	return &tourRegistry{
		entries: make(map[string]*tourEntry),
		clock:   c,
		idle:    idle,
		create:  create,
	}
}

// get returns the tour for key, creating one when key is unknown.
func (r *tourRegistry) get(key string) *session.TourSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for k, e := range r.entries {
		if k != key && now.Sub(e.lastSeen) > r.idle {
			delete(r.entries, k)
		}
	}

	e, ok := r.entries[key]
	if !ok {
		e = &tourEntry{tour: r.create(key)}
		r.entries[key] = e
	}
	e.lastSeen = now
	return e.tour
}

func (r *tourRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// tourFor resolves the caller's tour, issuing a cookie on first contact.
func (s *Server) tourFor(w http.ResponseWriter, r *http.Request) *session.TourSession {
	var key string
	if c, err := r.Cookie(tourCookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			key = c.Value
		}
	}
	if key == "" {
		key = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     tourCookie,
			Value:    key,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.tours.get(key)
}
