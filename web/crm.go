// ABOUTME: CRM demo pages, partials and JSON API
// ABOUTME: Chat submissions, form input, reset and the live event stream
package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/session"
	"github.com/harperreed/salesflow/viz"
)

type crmView struct {
	State models.CRMState     `json:"state"`
	Stats *viz.DashboardStats `json:"stats"`
}

func (s *Server) crmView() crmView {
	state := s.crm.Snapshot()
	return crmView{State: state, Stats: viz.GenerateDashboardStats(state)}
}

func (s *Server) handleCRMPage(w http.ResponseWriter, r *http.Request) {
	view := s.crmView()
	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           "SalesFlow CRM",
		"ContentTemplate": "crm-content",
		"State":           view.State,
		"Stats":           view.Stats,
		"Statuses":        models.Statuses,
		"Stages":          models.Stages,
	})
}

func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "dashboard-partial", s.crmView())
}

func (s *Server) handleContactsPartial(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "contacts-partial", s.crmView())
}

func (s *Server) handleDealsPartial(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "deals-partial", s.crmView())
}

func (s *Server) handlePipelinePage(w http.ResponseWriter, r *http.Request) {
	dot, err := viz.GeneratePipelineGraph(r.Context(), s.crm.Snapshot(), s.logger)
	if err != nil {
		s.logger.Error("failed to render pipeline graph", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           "Pipeline",
		"ContentTemplate": "graph-content",
		"DOT":             dot,
	})
}

func (s *Server) handleCRMState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.crmView())
}

type messageRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	Narration string   `json:"narration"`
	Actions   []string `json:"actions"`
	Ignored   []string `json:"ignored,omitempty"`
	Events    any      `json:"events"`
	State     crmView  `json:"view"`
}

func (s *Server) handleCRMMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}

	log := &eventLog{}
	turn, err := s.crm.Submit(r.Context(), req.Message, log)
	if err != nil {
		s.writeError(w, err, log.list())
		return
	}

	names := make([]string, 0, len(turn.Actions))
	for _, a := range turn.Actions {
		names = append(names, a.Kind())
	}
	writeJSON(w, http.StatusOK, turnResponse{
		Narration: turn.Narration,
		Actions:   names,
		Ignored:   turn.Ignored,
		Events:    log.list(),
		State:     s.crmView(),
	})
}

func (s *Server) handleCRMAddContact(w http.ResponseWriter, r *http.Request) {
	var form session.ContactForm
	if err := decodeJSON(r, &form); err != nil {
		s.writeError(w, err, nil)
		return
	}
	log := &eventLog{}
	contact, err := s.crm.AddContact(form, log)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"contact": contact, "events": log.list()})
}

func (s *Server) handleCRMAddDeal(w http.ResponseWriter, r *http.Request) {
	var form session.DealForm
	if err := decodeJSON(r, &form); err != nil {
		s.writeError(w, err, nil)
		return
	}
	log := &eventLog{}
	deal, err := s.crm.AddDeal(form, log)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"deal": deal, "events": log.list()})
}

func (s *Server) handleCRMReset(w http.ResponseWriter, r *http.Request) {
	log := &eventLog{}
	s.crm.Reset(log)
	writeJSON(w, http.StatusOK, map[string]any{"events": log.list(), "view": s.crmView()})
}

// handleCRMEvents streams session events as server-sent events until the
// client goes away or the session closes.
func (s *Server) handleCRMEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := s.crm.Events().Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Warn("failed to encode event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
