package attendance

import (
	"regexp"
	"strings"
)

// ParticipantKey is a normalized identity derived from a display name. Two
// display names that normalize to the same key are treated as the same
// participant
type ParticipantKey string

var punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a free-text display name into a stable ParticipantKey.
// It lowercases, strips punctuation, collapses runs of whitespace into a single
// space and trims surrounding whitespace. Any input is accepted, including the
// empty string, and normalizing is idempotent: Normalize(Normalize(x)) == Normalize(x)
func Normalize(raw string) (key ParticipantKey) {
	n := strings.ToLower(raw)
	n = punctuationRegex.ReplaceAllString(n, "")
	n = whitespaceRegex.ReplaceAllString(n, " ")

	return ParticipantKey(strings.TrimSpace(n))
}
