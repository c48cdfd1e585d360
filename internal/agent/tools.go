package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"venue_assistant/internal/logger"
	"venue_assistant/internal/services"
)

// VenueSearchTool searches the venue catalog. Results are formatted
// with bold names and a Place ID label so venue mentions in the final
// response are trackable by the context extractor.
func VenueSearchTool(svc *services.VenueService) tool.BaseTool {
	t, _ := utils.InferTool("venue_search", "Search event venues by cuisine, category, or neighborhood",
		func(ctx context.Context, query string) (string, error) {
			logger.Debug().Str("query", query).Msg("searching venues")

			venues := svc.SearchVenues(ctx, query)
			if len(venues) == 0 {
				return "No venues matched that search.", nil
			}

			var results []string
			results = append(results, "Here's what I found:")
			for i, venue := range venues {
				if i >= 3 {
					break
				}
				results = append(results, fmt.Sprintf("%d. **%s** — %s", i+1, venue.Name, venue.Description))
				results = append(results, fmt.Sprintf("   📍 Place ID: %s", venue.PlaceID))
				results = append(results, fmt.Sprintf("   ⭐ %.1f · %s · fits %d", venue.Rating, venue.Location, venue.Capacity))
			}

			return strings.Join(results, "\n"), nil
		})
	return t
}

// VenueDetailsTool looks up one venue by its place ID.
func VenueDetailsTool(svc *services.VenueService) tool.BaseTool {
	t, _ := utils.InferTool("venue_details", "Look up details for a specific venue by place ID",
		func(ctx context.Context, placeID string) (string, error) {
			logger.Debug().Str("place_id", placeID).Msg("looking up venue")

			venue, ok := svc.GetVenue(ctx, placeID)
			if !ok {
				return fmt.Sprintf("No venue found with place ID %s.", placeID), nil
			}

			return fmt.Sprintf("**%s** (%s)\n   📍 Place ID: %s\n   %s\n   ⭐ %.1f · capacity %d",
				venue.Name, venue.Location, venue.PlaceID, venue.Description, venue.Rating, venue.Capacity), nil
		})
	return t
}

// GetTools returns all venue tools.
func GetTools(svc *services.VenueService) []tool.BaseTool {
	return []tool.BaseTool{
		VenueSearchTool(svc),
		VenueDetailsTool(svc),
	}
}

// ToolInfos resolves the schema infos for a set of tools.
func ToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
