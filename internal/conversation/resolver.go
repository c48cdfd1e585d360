package conversation

import (
	"strings"

	"venue_assistant/pkg"
)

// ordinalRefs maps ordinal words and bare digits to venue positions.
var ordinalRefs = map[string]int{
	"first": 0, "1": 0,
	"second": 1, "2": 1,
	"third": 2, "3": 2,
	"fourth": 3, "4": 3,
	"fifth": 4, "5": 4,
}

// vaguePhrases resolve to the most recently mentioned venue.
var vaguePhrases = []string{"that one", "this one", "the one"}

// bareVagueRefs are single-word references treated the same way.
var bareVagueRefs = map[string]bool{"it": true, "that": true, "this": true}

// FindVenueByReference resolves a natural-language reference ("the
// second one", "that one", "the place in Old City", "Vedge") against
// the context's recent venues. Resolution order: ordinals, vague
// demonstratives, location mention, name mention, then the most recent
// venue as a fallback. Returns nil when nothing can match.
func FindVenueByReference(c *Context, reference string) *pkg.VenueInfo {
	venues := c.RecentVenues
	if len(venues) == 0 {
		return nil
	}

	ref := strings.ToLower(strings.TrimSpace(reference))

	// 1. Ordinal position. Out of range resolves to nothing rather
	// than falling through.
	for _, token := range strings.FieldsFunc(ref, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!'
	}) {
		if idx, ok := ordinalRefs[token]; ok {
			if idx >= len(venues) {
				return nil
			}
			return &venues[idx]
		}
	}

	// 2. Vague demonstratives resolve to the latest mention.
	for _, phrase := range vaguePhrases {
		if strings.Contains(ref, phrase) {
			return &venues[len(venues)-1]
		}
	}
	if bareVagueRefs[ref] {
		return &venues[len(venues)-1]
	}

	// 3. The tracked location named in the reference: newest venue
	// whose own location matches.
	if c.Location != "" && strings.Contains(ref, strings.ToLower(c.Location)) {
		for i := len(venues) - 1; i >= 0; i-- {
			if venues[i].Location != "" &&
				strings.Contains(strings.ToLower(venues[i].Location), strings.ToLower(c.Location)) {
				return &venues[i]
			}
		}
	}

	// 4. Venue named directly, newest first.
	for i := len(venues) - 1; i >= 0; i-- {
		if strings.Contains(ref, strings.ToLower(venues[i].Name)) {
			return &venues[i]
		}
	}

	// 5. Fall back to the latest mention.
	return &venues[len(venues)-1]
}
