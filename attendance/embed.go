package attendance

import (
	"strings"
)

// nameMarkers is the set of characters stripped from both ends of a raw
// name line (the event bot renders participant lists as "- Name" bullets)
const nameMarkers = "- "

// EmbedField is one named field of an embed, such as
// Name: "Accepted ✅", Value: "- PFC Jane\n- LCpl Bob"
type EmbedField struct {
	Name  string
	Value string
}

// Embed is the structured content block attached to an event message. All
// parts are optional: a missing description or an empty field list simply
// yields no names
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
}

// FieldMatcher decides whether an embed field holds names for a response
// category based on the field's name
type FieldMatcher func(fieldName string) bool

// AcceptedFieldMatcher is the default matcher for accepted fields. The
// event bot is closed source and its embed schema undocumented so this
// matches any field whose name contains "accepted" (case-insensitive)
func AcceptedFieldMatcher(fieldName string) bool {
	return strings.Contains(strings.ToLower(fieldName), "accepted")
}

// DeclinedFieldMatcher is the default matcher for declined fields. It matches
// field names containing "declined" but also any name containing the letter
// "x" since some variants of the bot render the ❌ glyph as a plain "x" in
// the field name. The looseness is deliberate: a field can match both the
// accepted and declined matchers (e.g. "x-accepted") and then contributes
// its names to both lists
func DeclinedFieldMatcher(fieldName string) bool {
	lowered := strings.ToLower(fieldName)
	return strings.Contains(lowered, "declined") || strings.Contains(lowered, "x")
}

// Extractor parses embeds into raw accepted and declined name lists
type Extractor struct {
	acceptedMatcher FieldMatcher
	declinedMatcher FieldMatcher
}

// ExtractorOption defines an option applied to a new Extractor
type ExtractorOption func(e *Extractor)

// OptionAcceptedMatcher overrides the matcher used to identify accepted fields
func OptionAcceptedMatcher(m FieldMatcher) ExtractorOption {
	return func(e *Extractor) {
		e.acceptedMatcher = m
	}
}

// OptionDeclinedMatcher overrides the matcher used to identify declined fields
func OptionDeclinedMatcher(m FieldMatcher) ExtractorOption {
	return func(e *Extractor) {
		e.declinedMatcher = m
	}
}

// NewExtractor creates a new Extractor with the default field matchers unless
// overridden via options
func NewExtractor(opts ...ExtractorOption) (e *Extractor) {
	e = new(Extractor)
	e.acceptedMatcher = AcceptedFieldMatcher
	e.declinedMatcher = DeclinedFieldMatcher

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract produces the ordered raw display-name lists for the accepted and
// declined categories of a single embed. Field values are split on newlines
// with each line stripped of its leading bullet markers; empty results are
// skipped. Description lines starting with "-" are always treated as
// accepted (the bot only ever lists attendees there). An embed with no
// fields and no description yields two empty lists, which is not an error
func (e *Extractor) Extract(embed Embed) (acceptedRaw []string, declinedRaw []string) {
	acceptedRaw = make([]string, 0)
	declinedRaw = make([]string, 0)

	for _, f := range embed.Fields {
		if e.acceptedMatcher(f.Name) {
			acceptedRaw = append(acceptedRaw, splitNames(f.Value)...)
		}

		if e.declinedMatcher(f.Name) {
			declinedRaw = append(declinedRaw, splitNames(f.Value)...)
		}
	}

	if embed.Description != "" {
		for _, line := range strings.Split(embed.Description, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "-") {
				if name := cleanName(line); name != "" {
					acceptedRaw = append(acceptedRaw, name)
				}
			}
		}
	}

	return acceptedRaw, declinedRaw
}

// splitNames splits a field value into cleaned name lines, dropping empties
func splitNames(value string) (names []string) {
	names = make([]string, 0)

	for _, line := range strings.Split(value, "\n") {
		if name := cleanName(line); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// cleanName strips bullet markers and surrounding whitespace from a raw line
func cleanName(line string) (name string) {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(line), nameMarkers))
}
