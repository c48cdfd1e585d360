package conversation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"venue_assistant/internal/logger"
	"venue_assistant/pkg"
)

// Extractor derives structured context fields from free text via
// ordered pattern lists. Rule order is load-bearing: per field, the
// first matching pattern wins and later patterns are not tried.
type Extractor struct{}

// NewExtractor creates the (stateless) extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

var (
	emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)

	// Name patterns, tried in order. The third rule (capitalized words
	// preceding an email) is handled separately in extractName.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:\bmy name is )([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
		regexp.MustCompile(`\bI'?m ([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
	}
	nameBeforeEmailPattern = regexp.MustCompile(`([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)[\s:,-]*$`)

	partySizePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bgroup of (\d+)`),
		regexp.MustCompile(`(?i)\bfor (\d+) (?:people|persons)\b`),
		regexp.MustCompile(`(?i)\b(\d+) guests\b`),
	}

	venuePattern = regexp.MustCompile(`\bat ([A-Z][A-Za-z'&]*(?:\s+[A-Z][A-Za-z'&]*)*)`)

	// Directional and city words that follow "at" but name a place,
	// not a venue.
	venueStopWords = map[string]bool{
		"south": true, "north": true, "east": true, "west": true,
		"downtown": true, "center": true, "city": true, "old": true,
		"philly": true, "philadelphia": true, "brooklyn": true,
		"manhattan": true, "nyc": true,
	}

	timeExpr = `\d{1,2}(?::\d{2})?\s*(?:am|pm)`
	dateExpr = `(?:today|tonight|tomorrow|this weekend|(?:this|next)\s+(?:mon|tues|wednes|thurs|fri|satur|sun)day|(?:mon|tues|wednes|thurs|fri|satur|sun)day)`

	// Date/time patterns: time-before-date phrasing first ("8pm
	// tomorrow"), then date-before-time ("tomorrow at 8pm"), then
	// date-only.
	dateTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(` + timeExpr + `\s+` + dateExpr + `)\b`),
		regexp.MustCompile(`(?i)\b(` + dateExpr + `\s+at\s+` + timeExpr + `)\b`),
		regexp.MustCompile(`(?i)\b(` + dateExpr + `)\b`),
	}

	// Known-city pattern with optional directional/neighborhood prefix
	// outranks the generic prepositional patterns.
	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:(south|north|east|west|downtown|center city|old city|university city)\s+)?(philly|philadelphia|new york|nyc|brooklyn|manhattan|boston|chicago|austin|seattle|denver|san francisco|los angeles)\b`),
		regexp.MustCompile(`(?i)\b(?:in|around|near)\s+([a-zA-Z][a-zA-Z ]{2,30}?)(?:[.,!?;]|$)`),
	}

	// Search-query patterns, most specific first: meal times before
	// cuisines before generic venue words.
	searchQueryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(brunch|breakfast|lunch|dinner|happy hour)\b`),
		regexp.MustCompile(`(?i)\b(italian|mexican|thai|chinese|japanese|sushi|korean|indian|french|mediterranean|vegan|vegetarian|pizza|seafood|bbq|tapas)\b`),
		regexp.MustCompile(`(?i)\b(restaurants?|bars?|cafes?|coffee shops?|clubs?|lounges?|rooftops?|breweries|brewery|wineries|winery|venues?)\b`),
	}

	// Bold venue name eventually followed by a Place ID label in the
	// same block. The lazy run between them tolerates emoji or other
	// decoration ahead of the label.
	venueMentionPattern = regexp.MustCompile(`\*\*([^*]+)\*\*[^*]*?Place ID:\s*(ChI[A-Za-z0-9_-]+)`)
)

// UpdateFromUserMessage applies the user-message rules to the context.
// Fields are sticky: a rule that matches nothing leaves the stored
// value alone. Never raises; on internal failure the context is left
// as-is for the fields not yet written.
func (e *Extractor) UpdateFromUserMessage(c *Context, message string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("user-message extraction failed, keeping prior context")
		}
	}()

	if email := emailPattern.FindString(message); email != "" {
		c.UserEmail = email
	}
	if name := e.extractName(message); name != "" {
		c.UserName = name
	}
	if size := firstGroup(partySizePatterns, message); size != "" {
		c.EventPartySize = atoiSafe(size)
	}
	if venue := e.extractVenueName(message); venue != "" {
		c.EventVenueName = venue
	}
	if dt := firstGroup(dateTimePatterns, message); dt != "" {
		c.EventDateTime = strings.TrimSpace(dt)
	}
	if loc := e.extractLocation(message); loc != "" {
		c.Location = loc
	}
	if query := firstGroup(searchQueryPatterns, message); query != "" {
		c.SearchQuery = strings.ToLower(query)
	}

	c.LastUserIntent = message
}

// UpdateFromAgentMessage scans an agent response for venue mentions
// ("**Name** ... Place ID: ChI...") and appends each as a VenueInfo,
// applying the FIFO cap per append. Never raises.
func (e *Extractor) UpdateFromAgentMessage(c *Context, message string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("agent-message extraction failed, keeping prior context")
		}
	}()

	for _, match := range venueMentionPattern.FindAllStringSubmatch(message, -1) {
		name := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(match[1]), ".,:"))
		if name == "" {
			continue
		}
		c.AddVenue(pkg.VenueInfo{
			Name:        name,
			PlaceID:     match[2],
			Location:    c.Location,
			MentionedAt: time.Now(),
		})
	}
}

// extractName tries the ordered name rules, then falls back to
// capitalized words immediately preceding a detected email address.
func (e *Extractor) extractName(message string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(message); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	loc := emailPattern.FindStringIndex(message)
	if loc == nil {
		return ""
	}
	prefix := strings.TrimSpace(message[:loc[0]])
	if m := nameBeforeEmailPattern.FindStringSubmatch(prefix); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractVenueName matches "at <Capitalized Phrase>" unless the phrase
// starts with a directional or city word.
func (e *Extractor) extractVenueName(message string) string {
	m := venuePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	candidate := strings.TrimSpace(m[1])
	first := strings.ToLower(strings.Fields(candidate)[0])
	if venueStopWords[first] {
		return ""
	}
	return candidate
}

// extractLocation applies the ordered location rules. When the
// known-city rule matches with both a prefix and a city group, they
// are joined with a space.
func (e *Extractor) extractLocation(message string) string {
	if m := locationPatterns[0].FindStringSubmatch(message); m != nil {
		prefix := strings.ToLower(strings.TrimSpace(m[1]))
		city := strings.ToLower(strings.TrimSpace(m[2]))
		if prefix != "" {
			return prefix + " " + city
		}
		return city
	}
	if m := locationPatterns[1].FindStringSubmatch(message); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1]))
	}
	return ""
}

func firstGroup(patterns []*regexp.Regexp, message string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(message); m != nil {
			return m[1]
		}
	}
	return ""
}

func atoiSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
