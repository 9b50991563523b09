// ABOUTME: Embed URL helpers for tour videos and documents
// ABOUTME: Recognises YouTube, Vimeo and Google Drive links
package agent

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	youtubePattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{6,})`)
	vimeoPattern   = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
	drivePattern   = regexp.MustCompile(`drive\.google\.com/(?:file/d/|open\?id=)([A-Za-z0-9_-]+)`)
)

// VideoEmbedURL converts a share link into an embeddable player URL. Other
// URLs are returned unchanged and treated as direct media.
func VideoEmbedURL(url string) string {
	if m := youtubePattern.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://www.youtube.com/embed/%s?enablejsapi=1", m[1])
	}
	if m := vimeoPattern.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://player.vimeo.com/video/%s", m[1])
	}
	if m := drivePattern.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", m[1])
	}
	return url
}

// VideoStartURL adds a start offset to an embed URL.
func VideoStartURL(embed string, seconds int) string {
	switch {
	case strings.Contains(embed, "youtube.com/embed/"):
		sep := "?"
		if strings.Contains(embed, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%sstart=%d&autoplay=1", embed, sep, seconds)
	case strings.Contains(embed, "player.vimeo.com"):
		return fmt.Sprintf("%s#t=%ds", embed, seconds)
	case strings.Contains(embed, "drive.google.com"):
		return embed
	}
	return fmt.Sprintf("%s#t=%d", embed, seconds)
}

// PDFEmbedURL converts a Drive link into its preview URL.
func PDFEmbedURL(url string) string {
	if m := drivePattern.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", m[1])
	}
	return url
}
