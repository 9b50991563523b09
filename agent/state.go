// ABOUTME: Owned, lock-guarded state holder for agent sessions
// ABOUTME: All mutation goes through Update; readers get consistent views
package agent

import "sync"

// State owns a value of type S. Nothing outside Update may mutate it.
type State[S any] struct {
	mu    sync.Mutex
	value S
}

func NewState[S any](initial S) *State[S] {
	return &State[S]{value: initial}
}

// Update runs fn with exclusive access to the value.
func (s *State[S]) Update(fn func(*S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.value)
}

// View runs fn with the current value. fn must not retain slices or
// pointers from it beyond the call.
func (s *State[S]) View(fn func(S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.value)
}

// Replace swaps in a new value wholesale.
func (s *State[S]) Replace(v S) {
	s.Update(func(cur *S) { *cur = v })
}
