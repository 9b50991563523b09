// ABOUTME: Error values returned by the model gateway
// ABOUTME: Separates unreachable relay, API rejection and malformed replies
package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means the request never produced an HTTP response.
	ErrUnreachable = errors.New("cannot reach API")

	// ErrMalformedResponse means a 2xx body did not carry a text reply.
	ErrMalformedResponse = errors.New("malformed API response")
)

// APIError is a non-2xx response from the relay or upstream API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "API request failed"
	}
	return e.Message
}

// UserMessage is the text shown to a person for err, matching the three
// gateway failure modes.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrUnreachable):
		return fmt.Sprintf("%s. Is the relay server running?", ErrUnreachable)
	case err != nil:
		return err.Error()
	}
	return ""
}
