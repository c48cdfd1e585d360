package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_assistant/pkg"
)

func threeVenueContext() *Context {
	c := NewContext()
	c.AddVenue(pkg.VenueInfo{Name: "Osteria", PlaceID: "ChIJ001", Location: "fairmount"})
	c.AddVenue(pkg.VenueInfo{Name: "Vedge", PlaceID: "ChIJ002", Location: "center city"})
	c.AddVenue(pkg.VenueInfo{Name: "Laser Wolf", PlaceID: "ChIJ003", Location: "fishtown"})
	return c
}

func TestResolveOrdinals(t *testing.T) {
	c := threeVenueContext()

	first := FindVenueByReference(c, "let's do the first one")
	require.NotNil(t, first)
	assert.Equal(t, "Osteria", first.Name)

	second := FindVenueByReference(c, "the second one")
	require.NotNil(t, second)
	assert.Equal(t, "Vedge", second.Name)

	third := FindVenueByReference(c, "book 3 please")
	require.NotNil(t, third)
	assert.Equal(t, "Laser Wolf", third.Name)
}

func TestResolveOrdinalOutOfRange(t *testing.T) {
	c := threeVenueContext()
	assert.Nil(t, FindVenueByReference(c, "the fifth one"))
}

func TestResolveVagueReference(t *testing.T) {
	c := threeVenueContext()

	for _, ref := range []string{"that one", "this one", "the one we discussed", "it", "that"} {
		got := FindVenueByReference(c, ref)
		require.NotNil(t, got, "reference %q", ref)
		assert.Equal(t, "Laser Wolf", got.Name, "vague reference %q resolves to most recent", ref)
	}
}

func TestResolveByLocation(t *testing.T) {
	c := threeVenueContext()
	c.Location = "center city"

	got := FindVenueByReference(c, "the spot in center city")
	require.NotNil(t, got)
	assert.Equal(t, "Vedge", got.Name)
}

func TestResolveByName(t *testing.T) {
	c := threeVenueContext()

	got := FindVenueByReference(c, "let's go with vedge after all")
	require.NotNil(t, got)
	assert.Equal(t, "Vedge", got.Name)
}

func TestResolveFallbackMostRecent(t *testing.T) {
	c := threeVenueContext()

	got := FindVenueByReference(c, "sounds good, book whatever works")
	require.NotNil(t, got)
	assert.Equal(t, "Laser Wolf", got.Name)
}

func TestResolveEmptyContext(t *testing.T) {
	assert.Nil(t, FindVenueByReference(NewContext(), "that one"))
}

func TestResolveOrdinalBeatsName(t *testing.T) {
	c := threeVenueContext()

	// "first" outranks the venue name mentioned later in the sentence
	got := FindVenueByReference(c, "the first one, not vedge")
	require.NotNil(t, got)
	assert.Equal(t, "Osteria", got.Name)
}
