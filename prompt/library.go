// ABOUTME: Prompts for the admin content tools
// ABOUTME: Transcript segment analysis and buyer intent generation
package prompt

import (
	"fmt"

	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/transcript"
)

// MaxAnalyzedSegments bounds how much of a transcript is sent for analysis.
const MaxAnalyzedSegments = 50

const transcriptAnalysisPrompt = `You are analyzing a sales demo transcript to identify key segments for an AI-guided product tour.

Your task:
1. Identify 3-5 key demo segments (topics/themes discussed)
2. For each segment, provide:
   - A descriptive title
   - Start timestamp (approximate)
   - Key topics covered
   - What buyer questions this answers

Format your response as JSON:
[
  {
    "title": "Segment title",
    "timestamp": "2:30",
    "topics": ["topic1", "topic2"],
    "answers": "What buyer question this answers"
  }
]`

const intentGenerationPrompt = `You are analyzing a company's demo content library to suggest buyer intent options for a self-guided product tour.

Based on the content available, suggest 4 buyer intent options that:
1. Are outcome-focused (not feature-focused)
2. Represent common buyer questions
3. Can be answered by the available content
4. Cover different use cases/personas

Format your response as JSON:
[
  {
    "title": "Short intent title (4-6 words)",
    "description": "One sentence describing what they'll learn",
    "relevantContent": ["video/pdf titles that address this"]
  }
]`

func TranscriptAnalysis() string { return transcriptAnalysisPrompt }

// TranscriptAnalysisRequest renders at most MaxAnalyzedSegments segments.
func TranscriptAnalysisRequest(segments []models.TranscriptSegment) string {
	if len(segments) > MaxAnalyzedSegments {
		segments = segments[:MaxAnalyzedSegments]
	}
	return "Analyze this demo transcript and suggest key segments:\n\n" + transcript.ToText(segments)
}

func IntentGeneration() string { return intentGenerationPrompt }

type intentVideo struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Segments []string `json:"segments"`
}

type intentSummary struct {
	Videos []intentVideo `json:"videos"`
	PDFs   []pdfSummary  `json:"pdfs"`
}

type pdfSummary struct {
	Title  string   `json:"title"`
	Type   string   `json:"type"`
	Topics string   `json:"topics"`
	Tags   []string `json:"tags"`
}

// IntentGenerationRequest summarises the library for intent suggestions.
func IntentGenerationRequest(videos []models.Video, pdfs []models.PDF) (string, error) {
	summary := intentSummary{
		Videos: make([]intentVideo, 0, len(videos)),
		PDFs:   make([]pdfSummary, 0, len(pdfs)),
	}
	for _, v := range videos {
		titles := make([]string, 0, len(v.AnalyzedSegments))
		for _, s := range v.AnalyzedSegments {
			titles = append(titles, s.Title)
		}
		summary.Videos = append(summary.Videos, intentVideo{Title: v.Title, Tags: nonNil(v.Tags), Segments: titles})
	}
	for _, p := range pdfs {
		summary.PDFs = append(summary.PDFs, pdfSummary{Title: p.Title, Type: p.Type, Topics: p.Topics, Tags: nonNil(p.Tags)})
	}

	body, err := indentJSON(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode content summary: %w", err)
	}
	return "Based on this content library, suggest 4 buyer intent options:\n\n" + body, nil
}
