package quote

import "strings"

// Clean normalises raw model output into a single quote line.
//
// Surrounding whitespace is trimmed, at most one leading and one trailing
// double quote are removed, and the first non-blank line is returned trimmed.
// If every line is blank the trimmed raw input is returned, quotes included.
func Clean(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, `"`)
	text = strings.TrimSuffix(text, `"`)

	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(raw)
}
