// ABOUTME: Discovery tour page and JSON API
// ABOUTME: Each request replies with the events it produced and the new tour state
package web

import (
	"net/http"
	"strconv"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/session"
)

type tourResponse struct {
	Events  []agent.Event    `json:"events"`
	State   models.TourState `json:"state"`
	Intents []models.Intent  `json:"intents,omitempty"`
}

func (s *Server) handleTourPage(w http.ResponseWriter, r *http.Request) {
	tour := s.tourFor(w, r)
	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           "Discovery Tour",
		"ContentTemplate": "tour-content",
		"Tour":            tour.Snapshot(),
	})
}

func (s *Server) handleTourState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tourResponse{State: s.tourFor(w, r).Snapshot()})
}

func (s *Server) handleTourStart(w http.ResponseWriter, r *http.Request) {
	tour := s.tourFor(w, r)
	intents, err := tour.Start()
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if intents == nil {
		intents = []models.Intent{}
	}
	writeJSON(w, http.StatusOK, tourResponse{State: tour.Snapshot(), Intents: intents})
}

func (s *Server) handleTourIntent(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeError(w, &session.ValidationError{Field: "intent", Message: "must be a number"}, nil)
		return
	}
	tour := s.tourFor(w, r)
	log := &eventLog{}
	if err := tour.SelectIntent(r.Context(), index, log); err != nil {
		s.writeError(w, err, log.list())
		return
	}
	writeJSON(w, http.StatusOK, tourResponse{Events: log.list(), State: tour.Snapshot()})
}

type customIntentRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleTourCustom(w http.ResponseWriter, r *http.Request) {
	var req customIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}
	tour := s.tourFor(w, r)
	log := &eventLog{}
	if err := tour.SubmitCustomIntent(r.Context(), req.Question, log); err != nil {
		s.writeError(w, err, log.list())
		return
	}
	writeJSON(w, http.StatusOK, tourResponse{Events: log.list(), State: tour.Snapshot()})
}

func (s *Server) handleTourMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}
	tour := s.tourFor(w, r)
	log := &eventLog{}
	if err := tour.Chat(r.Context(), req.Message, log); err != nil {
		s.writeError(w, err, log.list())
		return
	}
	writeJSON(w, http.StatusOK, tourResponse{Events: log.list(), State: tour.Snapshot()})
}

func (s *Server) handleTourRestart(w http.ResponseWriter, r *http.Request) {
	tour := s.tourFor(w, r)
	tour.Restart()
	writeJSON(w, http.StatusOK, tourResponse{State: tour.Snapshot()})
}
