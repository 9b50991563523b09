// ABOUTME: Tests for tour reply execution
// ABOUTME: Uses an in-memory library to check shown content and fit flow
package agent

import (
	"context"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/salesflow/models"
)

type memLibrary struct {
	videos []models.Video
	pdfs   []models.PDF
}

func (m memLibrary) Videos() ([]models.Video, error) { return m.videos, nil }
func (m memLibrary) PDFs() ([]models.PDF, error)     { return m.pdfs, nil }

func newTourFixture(t *testing.T) (*TourDispatcher, *State[models.TourState], *recorder) {
	t.Helper()
	lib := memLibrary{
		videos: []models.Video{
			{Title: "Pipeline walkthrough", URL: "https://www.youtube.com/watch?v=abc123XYZ"},
			{Title: "Reporting", URL: "https://vimeo.com/76979871"},
		},
		pdfs: []models.PDF{
			{Title: "Security whitepaper", URL: "https://drive.google.com/file/d/FILE123/view"},
		},
	}
	d := NewTourDispatcher(lib, Decoder{}, clock.NewMock(), nil)
	holder := NewState(models.TourState{Active: true, Screen: models.ScreenMain})
	return d, holder, &recorder{}
}

func tourSnapshot(holder *State[models.TourState]) models.TourState {
	var out models.TourState
	holder.View(func(s models.TourState) { out = s.Clone() })
	return out
}

func TestTourShowVideoAtTimestamp(t *testing.T) {
	d, holder, rec := newTourFixture(t)

	out, err := d.Handle(context.Background(), holder, "<action>SHOW_VIDEO:0:1:30</action> Here is the pipeline view.", rec)
	require.NoError(t, err)
	assert.False(t, out.Finished)

	assert.Equal(t, []string{EventShowVideo, EventStatus, EventMessage, EventStatus}, rec.types())
	view := rec.events[0].Payload.(VideoView)
	assert.Equal(t, 90, view.Seconds)
	assert.Equal(t, "https://www.youtube.com/embed/abc123XYZ?enablejsapi=1&start=90&autoplay=1", view.EmbedURL)
	assert.Equal(t, "Showing: Pipeline walkthrough", rec.events[1].Target)

	state := tourSnapshot(holder)
	require.Len(t, state.ShownContent, 1)
	assert.Equal(t, models.ContentVideo, state.ShownContent[0].Type)
	assert.Equal(t, "1:30", state.ShownContent[0].Timestamp)
	assert.Equal(t, StatusReady, state.Status)
}

func TestTourShowVideoAtHourTimestamp(t *testing.T) {
	d, holder, rec := newTourFixture(t)

	_, err := d.Handle(context.Background(), holder, "<action>SHOW_VIDEO:0:1:05:30</action>", rec)
	require.NoError(t, err)

	view := rec.events[0].Payload.(VideoView)
	assert.Equal(t, 3930, view.Seconds)
	assert.Contains(t, view.EmbedURL, "start=3930")
	assert.Equal(t, "1:05:30", tourSnapshot(holder).ShownContent[0].Timestamp)
}

func TestTourBareShowVideoDoesNothing(t *testing.T) {
	d, holder, rec := newTourFixture(t)

	_, err := d.Handle(context.Background(), holder, "<action>SHOW_VIDEO</action> Let me find it.", rec)
	require.NoError(t, err)

	assert.NotContains(t, rec.types(), EventShowVideo)
	for _, ev := range rec.events {
		if msg, ok := ev.Payload.(MessagePayload); ok {
			assert.NotEqual(t, "Sorry, I couldn't find that video.", msg.Text)
		}
	}
	assert.Empty(t, tourSnapshot(holder).ShownContent)
}

func TestTourShowMissingVideo(t *testing.T) {
	d, holder, rec := newTourFixture(t)

	_, err := d.Handle(context.Background(), holder, "<action>SHOW_VIDEO:9</action>", rec)
	require.NoError(t, err)

	require.Equal(t, []string{EventMessage, EventStatus}, rec.types())
	assert.Equal(t, "Sorry, I couldn't find that video.", rec.events[0].Payload.(MessagePayload).Text)
	assert.Empty(t, tourSnapshot(holder).ShownContent)
}

func TestTourShowPDF(t *testing.T) {
	d, holder, rec := newTourFixture(t)

	_, err := d.Handle(context.Background(), holder, "<action>SHOW_PDF:0</action>", rec)
	require.NoError(t, err)

	view := rec.events[0].Payload.(PDFView)
	assert.Equal(t, "https://drive.google.com/file/d/FILE123/preview", view.EmbedURL)
	assert.Equal(t, "https://drive.google.com/file/d/FILE123/view", view.DownloadURL)

	_, err = d.Handle(context.Background(), holder, "<action>SHOW_PDF:5</action>", rec)
	require.NoError(t, err)
	assert.Len(t, tourSnapshot(holder).ShownContent, 1)
}

func TestTourFitAssessmentShortCircuits(t *testing.T) {
	d, holder, rec := newTourFixture(t)
	_, err := d.Handle(context.Background(), holder, "<action>SHOW_PDF:0</action>", rec)
	require.NoError(t, err)
	rec.events = nil

	reply := "<action>FIT_ASSESSMENT</action>\nVERDICT: Good Fit\nKEY POINTS:\n- Fast\n- Cheap\nRECOMMENDATION: Book a call"
	out, err := d.Handle(context.Background(), holder, reply, rec)
	require.NoError(t, err)
	assert.True(t, out.Finished)

	require.Equal(t, []string{EventFitAssessment}, rec.types())
	view := rec.events[0].Payload.(FitView)
	assert.Equal(t, models.FitGood, view.Assessment.Class)
	assert.Equal(t, "Book a call", view.Assessment.Recommendation)
	require.Len(t, view.Explored, 1)

	state := tourSnapshot(holder)
	assert.Equal(t, models.ScreenFit, state.Screen)
	assert.False(t, state.Active)
	require.NotNil(t, state.Assessment)
}

func TestTourNarrationOnly(t *testing.T) {
	d, holder, rec := newTourFixture(t)

	_, err := d.Handle(context.Background(), holder, "We integrate with everything.", rec)
	require.NoError(t, err)
	require.Equal(t, []string{EventMessage, EventStatus}, rec.types())
	assert.Equal(t, "<p>We integrate with everything.</p>", rec.events[0].Payload.(MessagePayload).HTML)
}
