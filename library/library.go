// ABOUTME: Admin service for the discovery tour content library
// ABOUTME: Adds and removes videos and documents, and manages buyer intents
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/gateway"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/transcript"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNoContent = errors.New("please add some content first before generating intents")

	// ErrUnparsable means the model reply held no JSON array.
	ErrUnparsable = errors.New("could not parse AI response")
)

// FieldError reports a missing or invalid input field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Store persists the library lists. The charm client implements it.
type Store interface {
	Videos() ([]models.Video, error)
	SaveVideos([]models.Video) error
	PDFs() ([]models.PDF, error)
	SavePDFs([]models.PDF) error
	Intents() ([]models.Intent, error)
	SaveIntents([]models.Intent) error
}

// Completer is the model gateway. Library requests carry no history.
type Completer interface {
	Complete(ctx context.Context, system, user string, history *gateway.History) (string, error)
}

type Service struct {
	store   Store
	gateway Completer
	clock   clock.Clock
	logger  *zap.Logger
}

func NewService(store Store, gw Completer, c clock.Clock, logger *zap.Logger) *Service {
	if c == nil {
		c = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, gateway: gw, clock: c, logger: logger.Named("library")}
}

type VideoInput struct {
	URL              string                   `json:"url"`
	Title            string                   `json:"title"`
	Transcript       string                   `json:"transcript"`
	Tags             string                   `json:"tags"`
	AnalyzedSegments []models.AnalyzedSegment `json:"analyzedSegments,omitempty"`
}

func (in VideoInput) validate() error {
	switch {
	case strings.TrimSpace(in.URL) == "":
		return &FieldError{Field: "url"}
	case strings.TrimSpace(in.Title) == "":
		return &FieldError{Field: "title"}
	case strings.TrimSpace(in.Transcript) == "":
		return &FieldError{Field: "transcript"}
	}
	return nil
}

// AddVideo stores a new video with its transcript parsed into segments.
func (s *Service) AddVideo(in VideoInput) (models.Video, error) {
	if err := in.validate(); err != nil {
		return models.Video{}, err
	}
	videos, err := s.store.Videos()
	if err != nil {
		return models.Video{}, err
	}

	video := models.Video{
		ID:               s.nextID(func(id int64) bool { return videoIndex(videos, id) >= 0 }),
		URL:              strings.TrimSpace(in.URL),
		Title:            strings.TrimSpace(in.Title),
		Transcript:       strings.TrimSpace(in.Transcript),
		Segments:         transcript.Parse(in.Transcript),
		AnalyzedSegments: in.AnalyzedSegments,
		Tags:             SplitTags(in.Tags),
		CreatedAt:        s.clock.Now().UTC(),
	}
	if err := s.store.SaveVideos(append(videos, video)); err != nil {
		return models.Video{}, fmt.Errorf("failed to save video: %w", err)
	}
	s.logger.Info("video added", zap.Int64("id", video.ID), zap.Int("segments", len(video.Segments)))
	return video, nil
}

// UpdateVideo replaces a video's fields, keeping its id and creation time.
func (s *Service) UpdateVideo(id int64, in VideoInput) (models.Video, error) {
	if err := in.validate(); err != nil {
		return models.Video{}, err
	}
	videos, err := s.store.Videos()
	if err != nil {
		return models.Video{}, err
	}
	i := videoIndex(videos, id)
	if i < 0 {
		return models.Video{}, fmt.Errorf("video %d: %w", id, ErrNotFound)
	}

	now := s.clock.Now().UTC()
	v := &videos[i]
	v.URL = strings.TrimSpace(in.URL)
	v.Title = strings.TrimSpace(in.Title)
	v.Transcript = strings.TrimSpace(in.Transcript)
	v.Segments = transcript.Parse(in.Transcript)
	v.Tags = SplitTags(in.Tags)
	if in.AnalyzedSegments != nil {
		v.AnalyzedSegments = in.AnalyzedSegments
	}
	v.UpdatedAt = &now

	if err := s.store.SaveVideos(videos); err != nil {
		return models.Video{}, fmt.Errorf("failed to save video: %w", err)
	}
	return *v, nil
}

func (s *Service) DeleteVideo(id int64) error {
	videos, err := s.store.Videos()
	if err != nil {
		return err
	}
	i := videoIndex(videos, id)
	if i < 0 {
		return fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	return s.store.SaveVideos(append(videos[:i], videos[i+1:]...))
}

type PDFInput struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Topics string `json:"topics"`
	Tags   string `json:"tags"`
}

func (s *Service) AddPDF(in PDFInput) (models.PDF, error) {
	switch {
	case strings.TrimSpace(in.URL) == "":
		return models.PDF{}, &FieldError{Field: "url"}
	case strings.TrimSpace(in.Title) == "":
		return models.PDF{}, &FieldError{Field: "title"}
	}
	pdfs, err := s.store.PDFs()
	if err != nil {
		return models.PDF{}, err
	}

	pdf := models.PDF{
		ID:        s.nextID(func(id int64) bool { return pdfIndex(pdfs, id) >= 0 }),
		URL:       strings.TrimSpace(in.URL),
		Title:     strings.TrimSpace(in.Title),
		Type:      strings.TrimSpace(in.Type),
		Topics:    strings.TrimSpace(in.Topics),
		Tags:      SplitTags(in.Tags),
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.SavePDFs(append(pdfs, pdf)); err != nil {
		return models.PDF{}, fmt.Errorf("failed to save document: %w", err)
	}
	s.logger.Info("document added", zap.Int64("id", pdf.ID))
	return pdf, nil
}

func (s *Service) DeletePDF(id int64) error {
	pdfs, err := s.store.PDFs()
	if err != nil {
		return err
	}
	i := pdfIndex(pdfs, id)
	if i < 0 {
		return fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	return s.store.SavePDFs(append(pdfs[:i], pdfs[i+1:]...))
}

func (s *Service) Videos() ([]models.Video, error)   { return s.store.Videos() }
func (s *Service) PDFs() ([]models.PDF, error)       { return s.store.PDFs() }
func (s *Service) Intents() ([]models.Intent, error) { return s.store.Intents() }

// Stats counts the library contents.
type Stats struct {
	Videos  int `json:"videos"`
	PDFs    int `json:"pdfs"`
	Intents int `json:"intents"`
}

func (st Stats) VideoLabel() string { return plural(st.Videos, "video", "videos") }
func (st Stats) PDFLabel() string   { return plural(st.PDFs, "document", "documents") }

func (s *Service) Stats() (Stats, error) {
	videos, err := s.store.Videos()
	if err != nil {
		return Stats{}, err
	}
	pdfs, err := s.store.PDFs()
	if err != nil {
		return Stats{}, err
	}
	intents, err := s.store.Intents()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Videos: len(videos), PDFs: len(pdfs), Intents: len(intents)}, nil
}

// SplitTags splits a comma separated list, trimming each entry.
func SplitTags(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func (s *Service) nextID(taken func(int64) bool) int64 {
	id := models.NewID(s.clock.Now())
	for taken(id) {
		id++
	}
	return id
}

func videoIndex(videos []models.Video, id int64) int {
	for i := range videos {
		if videos[i].ID == id {
			return i
		}
	}
	return -1
}

func pdfIndex(pdfs []models.PDF, id int64) int {
	for i := range pdfs {
		if pdfs[i].ID == id {
			return i
		}
	}
	return -1
}

// Bundle is the export file format.
type Bundle struct {
	Videos     []models.Video  `json:"videos"`
	PDFs       []models.PDF    `json:"pdfs"`
	Intents    []models.Intent `json:"intents"`
	ExportedAt time.Time       `json:"exportedAt"`
}

func (s *Service) Export() (Bundle, error) {
	var b Bundle
	var err error
	if b.Videos, err = s.store.Videos(); err != nil {
		return Bundle{}, err
	}
	if b.PDFs, err = s.store.PDFs(); err != nil {
		return Bundle{}, err
	}
	if b.Intents, err = s.store.Intents(); err != nil {
		return Bundle{}, err
	}
	b.ExportedAt = s.clock.Now().UTC()
	return b, nil
}

// Import replaces each list present in the bundle. Lists that are absent
// (nil) are left alone.
func (s *Service) Import(b Bundle) error {
	if b.Videos != nil {
		if err := s.store.SaveVideos(b.Videos); err != nil {
			return fmt.Errorf("failed to import videos: %w", err)
		}
	}
	if b.PDFs != nil {
		if err := s.store.SavePDFs(b.PDFs); err != nil {
			return fmt.Errorf("failed to import documents: %w", err)
		}
	}
	if b.Intents != nil {
		if err := s.store.SaveIntents(b.Intents); err != nil {
			return fmt.Errorf("failed to import intents: %w", err)
		}
	}
	s.logger.Info("library imported",
		zap.Int("videos", len(b.Videos)),
		zap.Int("pdfs", len(b.PDFs)),
		zap.Int("intents", len(b.Intents)))
	return nil
}
