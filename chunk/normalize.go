package chunk

import (
	"regexp"
	"strings"
)

var (
	newlineRuns = regexp.MustCompile(`\n\n+`)
	spaceRuns   = regexp.MustCompile(` +`)
)

// Normalize cleans document whitespace before chunking: runs of two or more
// newlines collapse to exactly two, runs of spaces collapse to one, and
// leading/trailing whitespace is trimmed. Whitespace-only input yields the
// empty string. Normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
