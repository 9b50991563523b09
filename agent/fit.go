// ABOUTME: Extracts the structured fit assessment from a tour reply
// ABOUTME: Reads VERDICT, KEY POINTS, RISKS and RECOMMENDATION sections
package agent

import (
	"strings"

	"github.com/harperreed/salesflow/models"
)

const (
	DefaultVerdict        = "Mixed Fit"
	DefaultRecommendation = "Schedule a demo to learn more"
)

const (
	labelVerdict        = "VERDICT:"
	labelKeyPoints      = "KEY POINTS:"
	labelRisks          = "RISKS:"
	labelRecommendation = "RECOMMENDATION:"
)

var fitLabels = []string{labelVerdict, labelKeyPoints, labelRisks, labelRecommendation}

// ParseFitAssessment reads the labelled sections out of text. Each section
// runs from its label to the next label or the end of text. Missing
// sections take their defaults.
func ParseFitAssessment(text string) models.FitAssessment {
	fit := models.FitAssessment{
		Verdict:        DefaultVerdict,
		Recommendation: DefaultRecommendation,
	}

	// Verdict and recommendation are single lines.
	if v := section(text, labelVerdict); v != "" {
		fit.Verdict = strings.TrimSpace(strings.SplitN(v, "\n", 2)[0])
	}
	fit.KeyPoints = section(text, labelKeyPoints)
	fit.Risks = section(text, labelRisks)
	if r := section(text, labelRecommendation); r != "" {
		fit.Recommendation = strings.TrimSpace(strings.SplitN(r, "\n", 2)[0])
	}

	fit.Class = FitClass(fit.Verdict)
	return fit
}

// FitClass maps a verdict to good, mixed or poor. "poor" is checked after
// "good" and wins when both appear.
func FitClass(verdict string) string {
	v := strings.ToLower(verdict)
	class := models.FitMixed
	if strings.Contains(v, "good") {
		class = models.FitGood
	}
	if strings.Contains(v, "poor") {
		class = models.FitPoor
	}
	return class
}

func section(text, label string) string {
	start := strings.Index(text, label)
	if start < 0 {
		return ""
	}
	body := text[start+len(label):]

	end := len(body)
	for _, other := range fitLabels {
		if other == label {
			continue
		}
		if i := strings.Index(body, other); i >= 0 && i < end {
			end = i
		}
	}
	return strings.TrimSpace(body[:end])
}
