// ABOUTME: Keyed one-shot task scheduler on an injectable clock
// ABOUTME: Scheduling a key again cancels the earlier task for that key
package agent

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler runs delayed tasks. Tests drive it with clock.NewMock.
type Scheduler struct {
	clock clock.Clock

	mu      sync.Mutex
	seq     uint64
	tasks   map[string]scheduled
	stopped bool
}

type scheduled struct {
	seq   uint64
	timer *clock.Timer
}

func NewScheduler(c clock.Clock) *Scheduler {
	if c == nil {
		c = clock.New()
	}
	return &Scheduler{clock: c, tasks: make(map[string]scheduled)}
}

// Schedule runs fn after d unless cancelled or replaced first.
func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	if prev, ok := s.tasks[key]; ok {
		prev.timer.Stop()
	}

	s.seq++
	seq := s.seq
	timer := s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		cur, ok := s.tasks[key]
		if !ok || cur.seq != seq {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()
		fn()
	})
	s.tasks[key] = scheduled{seq: seq, timer: timer}
}

// Cancel stops the task for key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Stop cancels everything and refuses new tasks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	s.stopped = true
}

func (s *Scheduler) Clock() clock.Clock { return s.clock }
