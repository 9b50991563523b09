// ABOUTME: Narration formatting for chat bubbles
// ABOUTME: Converts plain paragraphs and dash lists into sanitised HTML
package agent

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var narrationPolicy = bluemonday.UGCPolicy()

// FormatNarration renders narration as HTML. Blank lines separate
// paragraphs; a paragraph starting with "-" becomes a bullet list. Inline
// markup the assistant uses (strong, em) survives sanitising, anything
// active does not. Empty narration renders as "".
func FormatNarration(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return ""
	}

	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if strings.HasPrefix(para, "-") {
			b.WriteString("<ul>")
			for _, line := range strings.Split(para, "\n") {
				line = strings.TrimSpace(line)
				if !strings.HasPrefix(line, "-") {
					continue
				}
				b.WriteString("<li>")
				b.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "-")))
				b.WriteString("</li>")
			}
			b.WriteString("</ul>")
			continue
		}

		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>")
	}

	return narrationPolicy.Sanitize(b.String())
}

// PlainText strips markup from narration for terminals and logs.
func PlainText(s string) string {
	return html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s))
}

// SanitizeInline keeps the inline emphasis of activity entries and drops
// anything active.
func SanitizeInline(s string) string {
	return narrationPolicy.Sanitize(s)
}
