// ABOUTME: System prompt for the discovery tour guide
// ABOUTME: Lists the content library by position and the <action> tag format
package prompt

import (
	"fmt"

	"github.com/harperreed/salesflow/models"
)

// TourInput is everything the tour prompt depends on.
type TourInput struct {
	Videos     []models.Video
	PDFs       []models.PDF
	ShownCount int
	Turns      int
}

type videoEntry struct {
	ID            int                      `json:"id"`
	Title         string                   `json:"title"`
	Tags          []string                 `json:"tags"`
	Segments      []models.AnalyzedSegment `json:"segments"`
	HasTranscript bool                     `json:"hasTranscript"`
}

type pdfEntry struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Type   string   `json:"type"`
	Topics string   `json:"topics"`
	Tags   []string `json:"tags"`
}

type contentLibrary struct {
	Videos []videoEntry `json:"videos"`
	PDFs   []pdfEntry   `json:"pdfs"`
}

const tourTemplate = `You are an AI guide for a product discovery tour. Your role is to help buyers understand if this product fits their needs by showing them relevant demo content.

**Available Content:**
%s

**Your Capabilities:**
1. SHOW_VIDEO: Display a video clip (specify video ID and optional timestamp)
2. SHOW_PDF: Display a document (specify PDF ID)
3. RESPOND: Answer with text only

**Instructions:**
- ALWAYS show visual proof when possible (video clips or PDFs)
- Keep responses concise (2-3 sentences)
- After showing content, ask if they want to see more or have questions
- Track what you've shown to avoid repetition
- When you have enough signal (4-5 interactions), suggest ending with a fit assessment

**Response Format:**
When you want to show content, use this format:
<action>SHOW_VIDEO:0:1:30</action>
This shows video ID 0 starting at timestamp 1:30

<action>SHOW_PDF:0</action>
This shows PDF ID 0

Then provide your narration explaining what they're about to see.

**Fit Assessment:**
After 4-5 meaningful interactions, if you have enough information, suggest:
<action>FIT_ASSESSMENT</action>

Then provide your assessment in this format:
VERDICT: Good Fit | Mixed Fit | Poor Fit
KEY POINTS: [3-4 bullet points]
RISKS: [Any concerns or limitations]
RECOMMENDATION: [Next step]

**Current State:**
- Content shown so far: %d items
- Conversation turns: %d`

// Tour builds the tour guide's system prompt. Content ids are positions in
// the library lists.
func Tour(in TourInput) string {
	lib := contentLibrary{
		Videos: make([]videoEntry, 0, len(in.Videos)),
		PDFs:   make([]pdfEntry, 0, len(in.PDFs)),
	}
	for i, v := range in.Videos {
		segments := v.AnalyzedSegments
		if segments == nil {
			segments = []models.AnalyzedSegment{}
		}
		lib.Videos = append(lib.Videos, videoEntry{
			ID:            i,
			Title:         v.Title,
			Tags:          nonNil(v.Tags),
			Segments:      segments,
			HasTranscript: v.Transcript != "",
		})
	}
	for i, p := range in.PDFs {
		lib.PDFs = append(lib.PDFs, pdfEntry{
			ID:     i,
			Title:  p.Title,
			Type:   p.Type,
			Topics: p.Topics,
			Tags:   nonNil(p.Tags),
		})
	}

	library, err := indentJSON(lib)
	if err != nil {
		library = `{"videos": [], "pdfs": []}`
	}
	return fmt.Sprintf(tourTemplate, library, in.ShownCount, in.Turns)
}

// IntentOpener is the first user message after a buyer picks an intent.
func IntentOpener(title string) string {
	return fmt.Sprintf("User selected intent: \"%s\". What should I show them first?", title)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
