// ABOUTME: JSON response helpers and error-to-status mapping
// ABOUTME: Collects events emitted during a request so the page can replay them
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/gateway"
	"github.com/harperreed/salesflow/library"
	"github.com/harperreed/salesflow/session"
)

const maxRequestBytes = 10 << 20

type errorResponse struct {
	Error  string        `json:"error"`
	Field  string        `json:"field,omitempty"`
	Events []agent.Event `json:"events,omitempty"`
}

// eventLog records events emitted while one request runs.
type eventLog struct {
	mu     sync.Mutex
	events []agent.Event
}

func (l *eventLog) Emit(e agent.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) list() []agent.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]agent.Event, len(l.events))
	copy(out, l.events)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return &session.ValidationError{Field: "body", Message: "must be valid JSON"}
	}
	return nil
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var verr *session.ValidationError
	var ferr *library.FieldError
	switch {
	case errors.As(err, &verr), errors.As(err, &ferr),
		errors.Is(err, session.ErrEmptyMessage), errors.Is(err, library.ErrNoContent):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrTourInactive):
		return http.StatusConflict
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case gateway.IsGatewayError(err), errors.Is(err, library.ErrUnparsable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error, events []agent.Event) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	resp := errorResponse{Error: err.Error(), Events: events}
	var verr *session.ValidationError
	var ferr *library.FieldError
	switch {
	case errors.As(err, &verr):
		resp.Field = verr.Field
	case errors.As(err, &ferr):
		resp.Field = ferr.Field
	}
	if gateway.IsGatewayError(err) {
		resp.Error = gateway.UserMessage(err)
	}
	writeJSON(w, status, resp)
}
