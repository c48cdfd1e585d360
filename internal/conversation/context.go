package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"venue_assistant/pkg"
)

// MaxRecentVenues caps the venue window tracked per session; the
// oldest mention is evicted on overflow.
const MaxRecentVenues = 5

// maxIntentRenderLen keeps oversized raw messages out of the rendered
// context string.
const maxIntentRenderLen = 100

// Context is the per-session conversational state accumulated from
// user and agent messages. Fields are sticky: an extractor pass that
// finds nothing leaves the previous value in place. Not safe for
// concurrent use; callers are expected to drive one session at a time.
type Context struct {
	Location       string          `json:"location,omitempty"`
	SearchQuery    string          `json:"search_query,omitempty"`
	UserName       string          `json:"user_name,omitempty"`
	UserEmail      string          `json:"user_email,omitempty"`
	EventVenueName string          `json:"event_venue_name,omitempty"`
	EventDateTime  string          `json:"event_date_time,omitempty"`
	EventPartySize int             `json:"event_party_size,omitempty"`
	RecentVenues   []pkg.VenueInfo `json:"recent_venues,omitempty"`
	LastUserIntent string          `json:"last_user_intent,omitempty"`
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

// AddVenue appends a venue mention, evicting the oldest entry once the
// window exceeds MaxRecentVenues. Eviction runs on every append, not
// batched.
func (c *Context) AddVenue(v pkg.VenueInfo) {
	c.RecentVenues = append(c.RecentVenues, v)
	if len(c.RecentVenues) > MaxRecentVenues {
		c.RecentVenues = c.RecentVenues[len(c.RecentVenues)-MaxRecentVenues:]
	}
}

// RemoveVenue deletes the venue at index, preserving order. Reports
// whether anything was removed.
func (c *Context) RemoveVenue(index int) bool {
	if index < 0 || index >= len(c.RecentVenues) {
		return false
	}
	c.RecentVenues = append(c.RecentVenues[:index], c.RecentVenues[index+1:]...)
	return true
}

// ClearField resets one named field. Reports whether the name was
// recognized.
func (c *Context) ClearField(name string) bool {
	switch name {
	case "location":
		c.Location = ""
	case "search_query":
		c.SearchQuery = ""
	case "user_name":
		c.UserName = ""
	case "user_email":
		c.UserEmail = ""
	case "event_venue_name":
		c.EventVenueName = ""
	case "event_date_time":
		c.EventDateTime = ""
	case "event_party_size":
		c.EventPartySize = 0
	case "recent_venues":
		c.RecentVenues = nil
	case "last_user_intent":
		c.LastUserIntent = ""
	default:
		return false
	}
	return true
}

// IsEmpty reports whether nothing has been tracked yet.
func (c *Context) IsEmpty() bool {
	return c.Location == "" && c.SearchQuery == "" && c.UserName == "" &&
		c.UserEmail == "" && c.EventVenueName == "" && c.EventDateTime == "" &&
		c.EventPartySize == 0 && len(c.RecentVenues) == 0 && c.LastUserIntent == ""
}

// ContextString renders the populated fields in fixed priority order,
// joined with " | ". The result is injected verbatim ahead of the next
// outgoing user message as "[CONTEXT: <string>]". Empty when nothing
// is populated.
func (c *Context) ContextString() string {
	var parts []string

	if c.UserName != "" {
		parts = append(parts, "User: "+c.UserName)
	}
	if c.UserEmail != "" {
		parts = append(parts, "Email: "+c.UserEmail)
	}
	if c.EventVenueName != "" {
		parts = append(parts, "Venue: "+c.EventVenueName)
	}
	if c.EventPartySize > 0 {
		parts = append(parts, fmt.Sprintf("Party size: %d", c.EventPartySize))
	}
	if c.EventDateTime != "" {
		parts = append(parts, "Time: "+c.EventDateTime)
	}
	if c.SearchQuery != "" {
		parts = append(parts, "Looking for: "+c.SearchQuery)
	}
	if c.Location != "" {
		parts = append(parts, "Location: "+c.Location)
	}
	if len(c.RecentVenues) > 0 {
		venues := c.RecentVenues
		if len(venues) > 3 {
			venues = venues[len(venues)-3:]
		}
		rendered := make([]string, 0, len(venues))
		for _, v := range venues {
			rendered = append(rendered, fmt.Sprintf("%s (Place ID: %s)", v.Name, v.PlaceID))
		}
		parts = append(parts, "Recent venues: "+strings.Join(rendered, ", "))
	}
	if c.LastUserIntent != "" && utf8.RuneCountInString(c.LastUserIntent) < maxIntentRenderLen {
		parts = append(parts, "Last request: "+c.LastUserIntent)
	}

	return strings.Join(parts, " | ")
}
