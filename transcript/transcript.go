// ABOUTME: Parser for speaker-tagged video transcripts
// ABOUTME: Turns "M:SS | Speaker" blocks into timestamped segments and back
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/harperreed/salesflow/models"
)

var headerPattern = regexp.MustCompile(`^(\d+):(\d+)\s*\|\s*(.+)$`)

// Parse splits transcript text into segments. A segment starts at a line of
// the form "M:SS | Speaker" and collects every following non-empty line until
// the next header. Lines before the first header are dropped.
func Parse(text string) []models.TranscriptSegment {
	segments := []models.TranscriptSegment{}
	var current *models.TranscriptSegment
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(body, " ")
		segments = append(segments, *current)
		current = nil
		body = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}

		if seg, ok := parseHeader(line); ok {
			flush()
			current = &seg
			continue
		}

		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return segments
}

func parseHeader(line string) (models.TranscriptSegment, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return models.TranscriptSegment{}, false
	}

	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return models.TranscriptSegment{}, false
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil {
		return models.TranscriptSegment{}, false
	}

	return models.TranscriptSegment{
		Timestamp:     fmt.Sprintf("%d:%02d", minutes, seconds),
		TimeInSeconds: minutes*60 + seconds,
		Speaker:       strings.TrimSpace(m[3]),
	}, true
}

// ToText renders segments in the transcript convention Parse accepts.
func ToText(segments []models.TranscriptSegment) string {
	blocks := make([]string, 0, len(segments))
	for _, seg := range segments {
		blocks = append(blocks, fmt.Sprintf("%s | %s\n%s", seg.Timestamp, seg.Speaker, seg.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// ParseTimestamp converts "M:SS" or "H:MM:SS" into seconds. Anything
// unparsable is zero.
func ParseTimestamp(ts string) int {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
