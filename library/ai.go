// ABOUTME: Model-assisted library tools
// ABOUTME: Suggests transcript segments and generates buyer intents
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/prompt"
	"github.com/harperreed/salesflow/transcript"
)

var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

// AnalyzeTranscript asks the model for key segments of a transcript. The
// result is a suggestion; nothing is stored.
func (s *Service) AnalyzeTranscript(ctx context.Context, text string) ([]models.AnalyzedSegment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &FieldError{Field: "transcript"}
	}
	segments := transcript.Parse(text)

	reply, err := s.gateway.Complete(ctx, prompt.TranscriptAnalysis(), prompt.TranscriptAnalysisRequest(segments), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze transcript: %w", err)
	}

	var analyzed []models.AnalyzedSegment
	if err := extractArray(reply, &analyzed); err != nil {
		s.logger.Warn("unusable transcript analysis", zap.Error(err), zap.Int("reply_length", len(reply)))
		return nil, err
	}
	return analyzed, nil
}

// GenerateIntents asks the model for buyer intents and replaces the stored
// intents with the result.
func (s *Service) GenerateIntents(ctx context.Context) ([]models.Intent, error) {
	videos, err := s.store.Videos()
	if err != nil {
		return nil, err
	}
	pdfs, err := s.store.PDFs()
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 && len(pdfs) == 0 {
		return nil, ErrNoContent
	}

	req, err := prompt.IntentGenerationRequest(videos, pdfs)
	if err != nil {
		return nil, err
	}
	reply, err := s.gateway.Complete(ctx, prompt.IntentGeneration(), req, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate intents: %w", err)
	}

	var intents []models.Intent
	if err := extractArray(reply, &intents); err != nil {
		s.logger.Warn("unusable intent suggestions", zap.Error(err), zap.Int("reply_length", len(reply)))
		return nil, err
	}
	if err := s.store.SaveIntents(intents); err != nil {
		return nil, fmt.Errorf("failed to save intents: %w", err)
	}
	s.logger.Info("intents generated", zap.Int("count", len(intents)))
	return intents, nil
}

// extractArray decodes the outermost JSON array found in reply.
func extractArray(reply string, v any) error {
	raw := jsonArrayPattern.FindString(reply)
	if raw == "" {
		return ErrUnparsable
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return nil
}
