package maps

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"kairos/internal/audit"
	"kairos/internal/observability"
	"kairos/internal/planner"
)

// Geocoder backfills coordinates for curated places the metadata pool could
// not locate. Optional: the pipeline runs without it when no API key is
// configured, leaving those places uncoordinated.
type Geocoder struct {
	client *maps.Client
	audit  *audit.Sink
	log    zerolog.Logger
}

// NewGeocoder creates a Geocoder with the given API key.
func NewGeocoder(apiKey string, sink *audit.Sink, log zerolog.Logger) (*Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Geocoder{client: client, audit: sink, log: log}, nil
}

type geocodeEntry struct {
	Query  string  `json:"query"`
	Status string  `json:"status"` // hit|miss|error
	Lat    float64 `json:"lat,omitempty"`
	Lon    float64 `json:"lon,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// FillCoordinates geocodes every place in the context that still lacks
// coordinates, querying "<place>, <region>, <destination>" for locality
// context. Misses and errors are logged and audited, never fatal: a place
// without coordinates is degraded, not broken.
func (g *Geocoder) FillCoordinates(ctx context.Context, dc *planner.DestinationContext, destination string) {
	for i := range dc.Regions {
		region := &dc.Regions[i]
		for j := range region.Places {
			p := &region.Places[j]
			if p.Lat != nil && p.Lon != nil {
				continue
			}

			query := fmt.Sprintf("%s, %s, %s", p.Name, region.Name, destination)
			lat, lon, err := g.geocode(ctx, query)
			if err != nil {
				g.log.Warn().Err(err).Str("place", p.Name).Msg("geocode backfill failed")
				g.audit.Write("geocoding", geocodeEntry{Query: query, Status: "error", Error: err.Error()})
				continue
			}
			p.Lat, p.Lon = &lat, &lon
			g.audit.Write("geocoding", geocodeEntry{Query: query, Status: "hit", Lat: lat, Lon: lon})
		}
	}
}

func (g *Geocoder) geocode(ctx context.Context, query string) (float64, float64, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		observability.ObserveExternal("geocoding", 0)
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}
	observability.ObserveExternal("geocoding", 200)
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no geocoding result for %q", query)
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
