// Package places fetches raw points of interest for a destination from
// OpenStreetMap: Nominatim for geocoding the destination, Overpass for the
// tagged places inside its bounding box.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"kairos/internal/observability"
	"kairos/internal/planner"
)

const userAgent = "kairos/1.0"

// Public Overpass mirrors, tried in order. The primary throttles
// aggressively, so the fallbacks matter in practice.
var overpassEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://lz4.overpass-api.de/api/interpreter",
	"https://overpass.nchc.org.tw/api/interpreter",
}

// endpointCooldown spaces out fallback attempts so a throttling mirror is
// not immediately hammered again.
var endpointCooldown = 1500 * time.Millisecond

// ErrUnresolvable means Nominatim returned no match for the destination.
var ErrUnresolvable = errors.New("unable to resolve destination")

// BoundingBox is the resolved geography of a destination.
type BoundingBox struct {
	South, West, North, East float64
	Lat, Lon                 float64
	// AreaID is the Overpass area id derived from the OSM object
	// (relation + 3600000000, way + 2400000000). Zero when the match is a
	// node and area queries are not possible.
	AreaID int64
}

// LargeArea reports whether the box spans more than half a degree on either
// axis. Large areas get lighter node-only queries and a longer server-side
// timeout to avoid Overpass killing the query.
func (b BoundingBox) LargeArea() bool {
	return b.North-b.South > 0.5 || b.East-b.West > 0.5
}

// Element is one raw OSM object from an Overpass response.
type Element struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *ElementCenter    `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type ElementCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Latitude returns the node position, or the element centroid for ways and
// relations served with "out center".
func (e Element) Latitude() float64 {
	if e.Lat == 0 && e.Center != nil {
		return e.Center.Lat
	}
	return e.Lat
}

func (e Element) Longitude() float64 {
	if e.Lon == 0 && e.Center != nil {
		return e.Center.Lon
	}
	return e.Lon
}

type Client struct {
	nominatimBase string
	hc            *http.Client
	rl            *rate.Limiter
	log           zerolog.Logger
}

func NewClient(nominatimBase string, rps float64, log zerolog.Logger) *Client {
	if nominatimBase == "" {
		nominatimBase = "https://nominatim.openstreetmap.org"
	}
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		nominatimBase: strings.TrimRight(nominatimBase, "/"),
		hc:            &http.Client{Timeout: 2 * time.Minute},
		rl:            rate.NewLimiter(rate.Limit(rps), 1),
		log:           log,
	}
}

type nominatimResult struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"` // south, north, west, east
	OSMID       int64    `json:"osm_id"`
	OSMType     string   `json:"osm_type"`
}

// Resolve geocodes a free-form destination name into a bounding box.
func (c *Client) Resolve(ctx context.Context, destination string) (BoundingBox, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return BoundingBox{}, err
	}

	q := url.Values{}
	q.Set("q", destination)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nominatimBase+"/search?"+q.Encode(), nil)
	if err != nil {
		return BoundingBox{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("nominatim", 0)
		return BoundingBox{}, fmt.Errorf("nominatim: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("nominatim", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return BoundingBox{}, fmt.Errorf("nominatim: bad status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return BoundingBox{}, fmt.Errorf("nominatim: %w", err)
	}
	if len(results) == 0 {
		return BoundingBox{}, fmt.Errorf("%w: %q", ErrUnresolvable, destination)
	}
	return toBoundingBox(results[0])
}

func toBoundingBox(r nominatimResult) (BoundingBox, error) {
	if len(r.BoundingBox) != 4 {
		return BoundingBox{}, fmt.Errorf("nominatim: malformed boundingbox %v", r.BoundingBox)
	}
	var b BoundingBox
	fields := []struct {
		dst *float64
		raw string
	}{
		{&b.South, r.BoundingBox[0]},
		{&b.North, r.BoundingBox[1]},
		{&b.West, r.BoundingBox[2]},
		{&b.East, r.BoundingBox[3]},
		{&b.Lat, r.Lat},
		{&b.Lon, r.Lon},
	}
	for _, f := range fields {
		if _, err := fmt.Sscanf(f.raw, "%f", f.dst); err != nil {
			return BoundingBox{}, fmt.Errorf("nominatim: bad coordinate %q", f.raw)
		}
	}
	switch r.OSMType {
	case "relation":
		b.AreaID = 3600000000 + r.OSMID
	case "way":
		b.AreaID = 2400000000 + r.OSMID
	}
	return b, nil
}

// FetchRawPlaces runs the three tiered Overpass queries built from the
// fetch profile and returns the combined elements. Tiers run concurrently;
// a failed tier is logged and contributes nothing rather than failing the
// whole fetch, so a partial pool is still usable downstream.
func (c *Client) FetchRawPlaces(ctx context.Context, box BoundingBox, profile planner.FetchProfile) ([]Element, error) {
	tiers := []struct {
		name  string
		tags  []planner.TagEntry
		limit int
	}{
		{"anchor", profile.AnchorTags, profile.AnchorLimit},
		{"lifestyle", profile.LifestyleTags, profile.LifestyleLimit},
		{"extras", profile.ExtrasTags, profile.ExtrasLimit},
	}

	results := make([][]Element, len(tiers))
	g, gctx := errgroup.WithContext(ctx)
	for i, tier := range tiers {
		if len(tier.tags) == 0 || tier.limit == 0 {
			continue
		}
		i, tier := i, tier
		g.Go(func() error {
			query := buildQuery(box, tier.tags, tier.limit)
			elems, err := c.runQuery(gctx, query)
			if err != nil {
				c.log.Warn().Err(err).Str("tier", tier.name).Msg("overpass tier failed, continuing without it")
				return nil
			}
			c.log.Debug().Str("tier", tier.name).Int("count", len(elems)).Msg("overpass tier fetched")
			results[i] = elems
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []Element
	for _, elems := range results {
		combined = append(combined, elems...)
	}
	if len(combined) == 0 {
		return nil, fmt.Errorf("overpass: no places found for bounding box")
	}
	return combined, nil
}

// buildQuery renders one Overpass QL union over the tier's tag pairs.
// Beaches are often mapped as polygons, so they query nwr; in large areas
// everything else stays node-only to keep the query light.
func buildQuery(box BoundingBox, tags []planner.TagEntry, limit int) string {
	bbox := fmt.Sprintf("%f,%f,%f,%f", box.South, box.West, box.North, box.East)
	timeout := 45
	if box.LargeArea() {
		timeout = 90
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeout)
	for _, t := range tags {
		kind := "node"
		if t.Key == "natural" && t.Value == "beach" {
			kind = "nwr"
		} else if !box.LargeArea() {
			kind = "nwr"
		}
		fmt.Fprintf(&b, "  %s[%q=%q](%s);\n", kind, t.Key, t.Value, bbox)
	}
	fmt.Fprintf(&b, ");\nout tags center %d;\n", limit)
	return b.String()
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// runQuery posts the query to each mirror in turn until one answers.
func (c *Client) runQuery(ctx context.Context, query string) ([]Element, error) {
	var lastErr error
	for _, endpoint := range overpassEndpoints {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, err
		}

		elems, err := c.post(ctx, endpoint, query)
		if err == nil {
			return elems, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("overpass endpoint failed, trying next")
		sleepCtx(ctx, endpointCooldown)
	}
	return nil, fmt.Errorf("overpass: all endpoints failed: %w", lastErr)
}

func (c *Client) post(ctx context.Context, endpoint, query string) ([]Element, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(query))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("overpass", 0)
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("overpass", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Elements, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
