package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmailAndName(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "Hi, my name is Sarah Chen, email sarah.chen@example.com")
	assert.Equal(t, "sarah.chen@example.com", c.UserEmail)
	assert.Equal(t, "Sarah Chen", c.UserName)
}

func TestExtractNameFromIm(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "Hey, I'm Marcus and I need a venue")
	assert.Equal(t, "Marcus", c.UserName)
}

func TestExtractNameIgnoresLowercaseAfterIm(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "I'm looking for a dinner spot")
	assert.Empty(t, c.UserName)
}

func TestExtractNameBeforeEmail(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "Contact: Tom Smith tom@example.com")
	assert.Equal(t, "Tom Smith", c.UserName)
	assert.Equal(t, "tom@example.com", c.UserEmail)
}

func TestExtractPartySize(t *testing.T) {
	e := NewExtractor()

	cases := map[string]int{
		"we're a group of 6":            6,
		"table for 4 people please":     4,
		"expecting 12 guests on friday": 12,
	}
	for msg, want := range cases {
		c := NewContext()
		e.UpdateFromUserMessage(c, msg)
		assert.Equal(t, want, c.EventPartySize, "message %q", msg)
	}
}

func TestExtractVenueName(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "Can you book a table at Laser Wolf for us")
	assert.Equal(t, "Laser Wolf", c.EventVenueName)
}

func TestExtractVenueNameStoplist(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	// "at South Philly" names a place, not a venue
	e.UpdateFromUserMessage(c, "find some bars at South Philly")
	assert.Empty(t, c.EventVenueName)
}

func TestExtractDateTimeOrder(t *testing.T) {
	e := NewExtractor()

	cases := map[string]string{
		"book it at 8pm tomorrow":     "8pm tomorrow",
		"book it tomorrow at 8pm":     "tomorrow at 8pm",
		"can we do next friday":       "next friday",
		"dinner tonight at 7:30pm ok": "tonight at 7:30pm",
	}
	for msg, want := range cases {
		c := NewContext()
		e.UpdateFromUserMessage(c, msg)
		assert.Equal(t, want, c.EventDateTime, "message %q", msg)
	}
}

func TestExtractLocationKnownCity(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "looking for dinner in South Philly")
	assert.Equal(t, "south philly", c.Location)
}

func TestExtractLocationPrepositional(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "somewhere near Rittenhouse Square, please")
	assert.Equal(t, "rittenhouse square", c.Location)
}

func TestExtractSearchQueryPrecedence(t *testing.T) {
	e := NewExtractor()

	// Meal time outranks cuisine, cuisine outranks generic venue word
	c := NewContext()
	e.UpdateFromUserMessage(c, "italian dinner at some restaurant")
	assert.Equal(t, "dinner", c.SearchQuery)

	c = NewContext()
	e.UpdateFromUserMessage(c, "an italian restaurant")
	assert.Equal(t, "italian", c.SearchQuery)

	c = NewContext()
	e.UpdateFromUserMessage(c, "any good restaurant around")
	assert.Equal(t, "restaurant", c.SearchQuery)
}

func TestLastUserIntentAlwaysRecorded(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "zzz nothing extractable zzz")
	assert.Equal(t, "zzz nothing extractable zzz", c.LastUserIntent)
}

func TestFieldsAreSticky(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromUserMessage(c, "dinner for 6 people in Philly")
	require.Equal(t, 6, c.EventPartySize)
	require.Equal(t, "philly", c.Location)

	// A later message without those fields leaves them unchanged
	e.UpdateFromUserMessage(c, "what about the second one?")
	assert.Equal(t, 6, c.EventPartySize)
	assert.Equal(t, "philly", c.Location)
	assert.Equal(t, "what about the second one?", c.LastUserIntent)
}

func TestUpdateFromAgentMessageVenues(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromAgentMessage(c, "**Osteria**. Place ID: ChIJabc123 **Vedge**. Place ID: ChIJxyz789")

	require.Len(t, c.RecentVenues, 2)
	assert.Equal(t, "Osteria", c.RecentVenues[0].Name)
	assert.Equal(t, "ChIJabc123", c.RecentVenues[0].PlaceID)
	assert.Equal(t, "Vedge", c.RecentVenues[1].Name)
	assert.Equal(t, "ChIJxyz789", c.RecentVenues[1].PlaceID)
}

func TestUpdateFromAgentMessageEmojiPrefix(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromAgentMessage(c, "**Laser Wolf**\n   📍 Place ID: ChIJlw456\n")

	require.Len(t, c.RecentVenues, 1)
	assert.Equal(t, "Laser Wolf", c.RecentVenues[0].Name)
	assert.Equal(t, "ChIJlw456", c.RecentVenues[0].PlaceID)
}

func TestUpdateFromAgentMessageIgnoresBoldWithoutID(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateFromAgentMessage(c, "I liked **this part** of your plan. No venues here.")
	assert.Empty(t, c.RecentVenues)
}

func TestUpdateFromAgentMessageCapAppliesPerAppend(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	msg := ""
	for i := 0; i < 7; i++ {
		msg += "**Venue" + string(rune('A'+i)) + "**. Place ID: ChIJ" + string(rune('a'+i)) + "00 "
	}
	e.UpdateFromAgentMessage(c, msg)

	require.Len(t, c.RecentVenues, 5)
	assert.Equal(t, "VenueC", c.RecentVenues[0].Name)
	assert.Equal(t, "VenueG", c.RecentVenues[4].Name)
}

func TestVenueInheritsContextLocation(t *testing.T) {
	e := NewExtractor()
	c := NewContext()
	c.Location = "philly"

	e.UpdateFromAgentMessage(c, "**Osteria**. Place ID: ChIJabc123")
	require.Len(t, c.RecentVenues, 1)
	assert.Equal(t, "philly", c.RecentVenues[0].Location)
}
