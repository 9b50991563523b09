// ABOUTME: Bounded conversation history for model requests
// ABOUTME: Keeps the most recent messages in a sliding window
package gateway

import (
	"sync"

	"github.com/harperreed/salesflow/models"
)

// DefaultHistoryLimit is the number of messages (not turns) retained.
const DefaultHistoryLimit = 20

// History is a FIFO message log that never holds more than its limit.
type History struct {
	mu       sync.Mutex
	limit    int
	messages []models.Message
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append adds messages in order and drops the oldest beyond the limit.
func (h *History) Append(msgs ...models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msgs...)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append([]models.Message(nil), h.messages[over:]...)
	}
}

// Messages returns a copy of the retained messages, oldest first.
func (h *History) Messages() []models.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Message(nil), h.messages...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Turns counts retained user messages.
func (h *History) Turns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.messages {
		if m.Role == models.RoleUser {
			n++
		}
	}
	return n
}

func (h *History) Limit() int { return h.limit }

func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
