// ABOUTME: JSON helpers for embedding data in prompts
// ABOUTME: Encodes without HTML escaping so titles read naturally
package prompt

import (
	"bytes"
	"encoding/json"
	"strings"
)

func compactJSON(v any) string {
	s, err := encode(v, "")
	if err != nil {
		return "[]"
	}
	return s
}

func indentJSON(v any) (string, error) {
	return encode(v, "  ")
}

func encode(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
