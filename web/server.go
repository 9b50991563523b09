// ABOUTME: Web server for the CRM demo, discovery tour and admin library
// ABOUTME: Serves embedded pages, the JSON API, live events and the relay
package web

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/db"
	"github.com/harperreed/salesflow/library"
	"github.com/harperreed/salesflow/relay"
	"github.com/harperreed/salesflow/session"
	"github.com/harperreed/salesflow/viz"
)

//go:embed templates/* static/*
var assetsFS embed.FS

// LibraryStore is the tour content store. The charm client implements it.
type LibraryStore interface {
	library.Store
	session.TourStore
}

type Config struct {
	DB           *sql.DB
	Library      LibraryStore
	Gateway      session.Completer
	Relay        *relay.Relay // optional; mounted at /api/messages
	Decoder      agent.Decoder
	Dispatch     agent.Options
	Clock        clock.Clock
	HistoryLimit int
	TourIdle     time.Duration
	Logger       *zap.Logger
}

type Server struct {
	crm       *session.CRMSession
	tours     *tourRegistry
	library   *library.Service
	relay     *relay.Relay
	templates *template.Template
	logger    *zap.Logger
}

// NewServer restores the CRM from the database and parses the templates.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	state, err := db.LoadCRMState(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to load CRM state: %w", err)
	}

	funcMap := template.FuncMap{
		"money": viz.FormatMoney,
		"activity": func(text string) template.HTML {
			return template.HTML(agent.SanitizeInline(text))
		},
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(assetsFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	crm := session.NewCRMSession(state, session.CRMConfig{
		Gateway:      cfg.Gateway,
		Decoder:      cfg.Decoder,
		Dispatch:     cfg.Dispatch,
		Persister:    session.SQLPersister{DB: cfg.DB},
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logger,
	})

	return &Server{
		crm: crm,
		tours: newTourRegistry(cfg.Clock, cfg.TourIdle, func(key string) *session.TourSession {
			return session.NewTourSession(cfg.Library, session.TourConfig{
				ID:           key,
				Gateway:      cfg.Gateway,
				Decoder:      cfg.Decoder,
				Clock:        cfg.Clock,
				HistoryLimit: cfg.HistoryLimit,
				Logger:       logger,
			})
		}),
		library:   library.NewService(cfg.Library, cfg.Gateway, cfg.Clock, logger),
		relay:     cfg.Relay,
		templates: tmpl,
		logger:    logger.Named("web"),
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(assetsFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Pages
	mux.HandleFunc("GET /{$}", s.handleCRMPage)
	mux.HandleFunc("GET /tour", s.handleTourPage)
	mux.HandleFunc("GET /admin", s.handleAdminPage)
	mux.HandleFunc("GET /graphs/pipeline", s.handlePipelinePage)

	// Partials for HTMX
	mux.HandleFunc("GET /partials/dashboard", s.handleDashboardPartial)
	mux.HandleFunc("GET /partials/contacts", s.handleContactsPartial)
	mux.HandleFunc("GET /partials/deals", s.handleDealsPartial)

	// CRM demo
	mux.HandleFunc("GET /api/crm/state", s.handleCRMState)
	mux.HandleFunc("GET /api/crm/events", s.handleCRMEvents)
	mux.HandleFunc("POST /api/crm/messages", s.handleCRMMessage)
	mux.HandleFunc("POST /api/crm/contacts", s.handleCRMAddContact)
	mux.HandleFunc("POST /api/crm/deals", s.handleCRMAddDeal)
	mux.HandleFunc("POST /api/crm/reset", s.handleCRMReset)

	// Discovery tour
	mux.HandleFunc("GET /api/tour/state", s.handleTourState)
	mux.HandleFunc("POST /api/tour/start", s.handleTourStart)
	mux.HandleFunc("POST /api/tour/intents/{index}", s.handleTourIntent)
	mux.HandleFunc("POST /api/tour/custom", s.handleTourCustom)
	mux.HandleFunc("POST /api/tour/messages", s.handleTourMessage)
	mux.HandleFunc("POST /api/tour/restart", s.handleTourRestart)

	// Admin library
	mux.HandleFunc("GET /api/admin/library", s.handleAdminLibrary)
	mux.HandleFunc("POST /api/admin/videos", s.handleAdminAddVideo)
	mux.HandleFunc("PUT /api/admin/videos/{id}", s.handleAdminUpdateVideo)
	mux.HandleFunc("DELETE /api/admin/videos/{id}", s.handleAdminDeleteVideo)
	mux.HandleFunc("POST /api/admin/pdfs", s.handleAdminAddPDF)
	mux.HandleFunc("DELETE /api/admin/pdfs/{id}", s.handleAdminDeletePDF)
	mux.HandleFunc("POST /api/admin/analyze", s.handleAdminAnalyze)
	mux.HandleFunc("POST /api/admin/intents/generate", s.handleAdminGenerateIntents)
	mux.HandleFunc("GET /api/admin/export", s.handleAdminExport)
	mux.HandleFunc("POST /api/admin/import", s.handleAdminImport)

	if s.relay != nil {
		s.relay.Mount(mux)
	}

	return s.withLogging(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// connections and closes the sessions.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting web server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		// SSE streams end when the hub closes.
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) Close() {
	s.crm.Close()
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
