package services

import (
	"context"
	"strings"
)

// Venue is one bookable venue in the catalog.
type Venue struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	Capacity    int     `json:"capacity"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
}

// VenueService handles venue catalog lookups.
type VenueService struct {
	venues []Venue
}

// NewVenueService creates the service with a built-in catalog.
func NewVenueService() *VenueService {
	return &VenueService{
		venues: []Venue{
			{
				PlaceID:     "ChIJ8xOsteria01",
				Name:        "Osteria",
				Location:    "fairmount",
				Category:    "italian restaurant",
				Capacity:    80,
				Rating:      4.6,
				Description: "Rustic Italian dining with a private room for groups",
			},
			{
				PlaceID:     "ChIJ2kVedge0002",
				Name:        "Vedge",
				Location:    "center city",
				Category:    "vegan restaurant",
				Capacity:    60,
				Rating:      4.8,
				Description: "Upscale vegetable-forward tasting menus",
			},
			{
				PlaceID:     "ChIJ5dLaserW03",
				Name:        "Laser Wolf",
				Location:    "fishtown",
				Category:    "israeli grill",
				Capacity:    70,
				Rating:      4.7,
				Description: "Skewers and salatim, lively room for parties",
			},
			{
				PlaceID:     "ChIJ9qBokBar04",
				Name:        "Bok Bar",
				Location:    "south philly",
				Category:    "rooftop bar",
				Capacity:    150,
				Rating:      4.4,
				Description: "Rooftop bar with skyline views, seasonal",
			},
			{
				PlaceID:     "ChIJ4mFount05",
				Name:        "Fountain Porter",
				Location:    "south philly",
				Category:    "bar",
				Capacity:    40,
				Rating:      4.5,
				Description: "Neighborhood bar, good for small casual groups",
			},
		},
	}
}

// SearchVenues returns venues matching the query by name, location,
// category or description. Empty query returns the whole catalog.
func (vs *VenueService) SearchVenues(ctx context.Context, query string) []Venue {
	if query == "" {
		return vs.venues
	}

	var results []Venue
	queryLower := strings.ToLower(query)

	for _, venue := range vs.venues {
		if strings.Contains(strings.ToLower(venue.Name), queryLower) ||
			strings.Contains(venue.Location, queryLower) ||
			strings.Contains(venue.Category, queryLower) ||
			strings.Contains(strings.ToLower(venue.Description), queryLower) {
			results = append(results, venue)
		}
	}

	return results
}

// GetVenue looks up a single venue by place ID.
func (vs *VenueService) GetVenue(ctx context.Context, placeID string) (Venue, bool) {
	for _, venue := range vs.venues {
		if venue.PlaceID == placeID {
			return venue, true
		}
	}
	return Venue{}, false
}
