// ABOUTME: Error values for conversation sessions
// ABOUTME: Covers input validation and the single-flight guard
package session

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned while a reply for the same session is in flight.
	ErrBusy = errors.New("a reply is already in progress")

	ErrEmptyMessage = errors.New("message is empty")

	// ErrTourInactive is returned when chatting before the tour has started.
	ErrTourInactive = errors.New("tour has not started")
)

// ValidationError rejects form input before any state changes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
