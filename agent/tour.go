// ABOUTME: Executes discovery tour replies against the content library
// ABOUTME: Shows videos or documents, or ends the tour with a fit assessment
package agent

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/transcript"
)

const (
	StatusReady       = "Ready for your questions"
	msgVideoNotFound  = "Sorry, I couldn't find that video."
	msgPDFNotFound    = "Sorry, I couldn't find that document."
	statusShowingForm = "Showing: %s"
)

// Library is the read side of the tour content store. Positions in the
// returned slices are the ids the assistant refers to.
type Library interface {
	Videos() ([]models.Video, error)
	PDFs() ([]models.PDF, error)
}

// VideoView is the payload of EventShowVideo.
type VideoView struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	EmbedURL  string `json:"embedUrl"`
	Timestamp string `json:"timestamp"`
	Seconds   int    `json:"seconds"`
}

// PDFView is the payload of EventShowPDF.
type PDFView struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	EmbedURL    string `json:"embedUrl"`
	DownloadURL string `json:"downloadUrl"`
}

// FitView is the payload of EventFitAssessment.
type FitView struct {
	Assessment models.FitAssessment  `json:"assessment"`
	Explored   []models.ShownContent `json:"explored"`
}

// TourOutcome summarises what one reply did.
type TourOutcome struct {
	Action    Action
	Narration string
	Ignored   []string
	Finished  bool
}

type TourDispatcher struct {
	library Library
	decoder Decoder
	clock   clock.Clock
	logger  *zap.Logger
}

func NewTourDispatcher(library Library, decoder Decoder, c clock.Clock, logger *zap.Logger) *TourDispatcher {
	if c == nil {
		c = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TourDispatcher{library: library, decoder: decoder, clock: c, logger: logger.Named("tour")}
}

// Handle executes reply: the first action tag runs, then the narration is
// shown if non-empty. A fit assessment ends the tour and skips narration.
// Only a strict decoder returns an error.
func (d *TourDispatcher) Handle(ctx context.Context, holder *State[models.TourState], reply string, emit Emitter) (TourOutcome, error) {
	emit = emitOrDiscard(emit)

	decoded, err := d.decoder.DecodeTour(reply)
	if err != nil {
		return TourOutcome{}, err
	}
	if len(decoded.Ignored) > 0 {
		d.logger.Info("ignored unknown tour actions", zap.Strings("actions", decoded.Ignored))
	}

	out := TourOutcome{Action: decoded.Action, Narration: decoded.Narration, Ignored: decoded.Ignored}

	switch a := decoded.Action.(type) {
	case ShowVideo:
		d.showVideo(holder, a, emit)
	case ShowPDF:
		d.showPDF(holder, a, emit)
	case AssessFit:
		d.finish(holder, reply, emit)
		out.Finished = true
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	if decoded.Narration != "" {
		emit.Emit(AssistantMessage(decoded.Narration))
	}
	d.setStatus(holder, StatusReady, emit)
	return out, nil
}

func (d *TourDispatcher) showVideo(holder *State[models.TourState], a ShowVideo, emit Emitter) {
	videos, err := d.library.Videos()
	if err != nil {
		d.logger.Warn("failed to load videos", zap.Error(err))
	}
	if a.VideoID < 0 || a.VideoID >= len(videos) {
		emit.Emit(AssistantMessage(msgVideoNotFound))
		return
	}

	video := videos[a.VideoID]
	seconds := transcript.ParseTimestamp(a.Timestamp)
	view := VideoView{
		ID:        a.VideoID,
		Title:     video.Title,
		EmbedURL:  VideoStartURL(VideoEmbedURL(video.URL), seconds),
		Timestamp: a.Timestamp,
		Seconds:   seconds,
	}

	holder.Update(func(s *models.TourState) {
		s.ShownContent = append(s.ShownContent, models.ShownContent{
			Type:      models.ContentVideo,
			ID:        a.VideoID,
			Title:     video.Title,
			Timestamp: a.Timestamp,
			ShownAt:   d.clock.Now(),
		})
	})
	emit.Emit(Event{Type: EventShowVideo, Target: fmt.Sprintf("video-%d", a.VideoID), Payload: view})
	d.setStatus(holder, fmt.Sprintf(statusShowingForm, video.Title), emit)
}

func (d *TourDispatcher) showPDF(holder *State[models.TourState], a ShowPDF, emit Emitter) {
	pdfs, err := d.library.PDFs()
	if err != nil {
		d.logger.Warn("failed to load documents", zap.Error(err))
	}
	if a.PDFID < 0 || a.PDFID >= len(pdfs) {
		emit.Emit(AssistantMessage(msgPDFNotFound))
		return
	}

	pdf := pdfs[a.PDFID]
	holder.Update(func(s *models.TourState) {
		s.ShownContent = append(s.ShownContent, models.ShownContent{
			Type:    models.ContentPDF,
			ID:      a.PDFID,
			Title:   pdf.Title,
			ShownAt: d.clock.Now(),
		})
	})
	emit.Emit(Event{Type: EventShowPDF, Target: fmt.Sprintf("pdf-%d", a.PDFID), Payload: PDFView{
		ID:          a.PDFID,
		Title:       pdf.Title,
		EmbedURL:    PDFEmbedURL(pdf.URL),
		DownloadURL: pdf.URL,
	}})
	d.setStatus(holder, fmt.Sprintf(statusShowingForm, pdf.Title), emit)
}

func (d *TourDispatcher) finish(holder *State[models.TourState], reply string, emit Emitter) {
	fit := ParseFitAssessment(reply)
	var explored []models.ShownContent
	holder.Update(func(s *models.TourState) {
		s.Screen = models.ScreenFit
		s.Active = false
		s.Assessment = &fit
		explored = append([]models.ShownContent(nil), s.ShownContent...)
	})
	emit.Emit(Event{Type: EventFitAssessment, Payload: FitView{Assessment: fit, Explored: explored}})
}

func (d *TourDispatcher) setStatus(holder *State[models.TourState], status string, emit Emitter) {
	holder.Update(func(s *models.TourState) { s.Status = status })
	emit.Emit(Event{Type: EventStatus, Target: status})
}

// SetStatus records and announces a tour status line.
func (d *TourDispatcher) SetStatus(holder *State[models.TourState], status string, emit Emitter) {
	d.setStatus(holder, status, emitOrDiscard(emit))
}

// AssistantMessage builds a message event for an assistant line.
func AssistantMessage(text string) Event {
	return Event{Type: EventMessage, Payload: MessagePayload{
		Role: models.RoleAssistant,
		Text: text,
		HTML: FormatNarration(text),
	}}
}
