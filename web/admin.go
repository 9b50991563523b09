// ABOUTME: Admin page and JSON API for the tour content library
// ABOUTME: Videos, documents, transcript analysis, intents, export and import
package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/harperreed/salesflow/library"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/session"
)

type libraryView struct {
	Videos  []models.Video  `json:"videos"`
	PDFs    []models.PDF    `json:"pdfs"`
	Intents []models.Intent `json:"intents"`
	Stats   library.Stats   `json:"stats"`
}

func (s *Server) libraryView() (libraryView, error) {
	var v libraryView
	var err error
	if v.Videos, err = s.library.Videos(); err != nil {
		return v, err
	}
	if v.PDFs, err = s.library.PDFs(); err != nil {
		return v, err
	}
	if v.Intents, err = s.library.Intents(); err != nil {
		return v, err
	}
	if v.Stats, err = s.library.Stats(); err != nil {
		return v, err
	}
	return v, nil
}

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.libraryView()
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           "Content Library",
		"ContentTemplate": "admin-content",
		"Library":         view,
	})
}

func (s *Server) handleAdminLibrary(w http.ResponseWriter, r *http.Request) {
	view, err := s.libraryView()
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, &session.ValidationError{Field: "id", Message: "must be a number"}
	}
	return id, nil
}

func (s *Server) handleAdminAddVideo(w http.ResponseWriter, r *http.Request) {
	var in library.VideoInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err, nil)
		return
	}
	video, err := s.library.AddVideo(in)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

func (s *Server) handleAdminUpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	var in library.VideoInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err, nil)
		return
	}
	video, err := s.library.UpdateVideo(id, in)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleAdminDeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := s.library.DeleteVideo(id); err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminAddPDF(w http.ResponseWriter, r *http.Request) {
	var in library.PDFInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err, nil)
		return
	}
	pdf, err := s.library.AddPDF(in)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, pdf)
}

func (s *Server) handleAdminDeletePDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := s.library.DeletePDF(id); err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type analyzeRequest struct {
	Transcript string `json:"transcript"`
}

func (s *Server) handleAdminAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}
	segments, err := s.library.AnalyzeTranscript(r.Context(), req.Transcript)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": segments})
}

func (s *Server) handleAdminGenerateIntents(w http.ResponseWriter, r *http.Request) {
	intents, err := s.library.GenerateIntents(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"intents": intents})
}

func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.library.Export()
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="discovery-tour-export-%s.json"`, bundle.ExportedAt.Format("2006-01-02")))
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleAdminImport(w http.ResponseWriter, r *http.Request) {
	var bundle library.Bundle
	if err := decodeJSON(r, &bundle); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := s.library.Import(bundle); err != nil {
		s.writeError(w, err, nil)
		return
	}
	view, err := s.libraryView()
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
