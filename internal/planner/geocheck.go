// Pure geographic spot-checks on curated output. The clustering and
// curation policy is executed by the oracle; these helpers let callers and
// tests flag outputs that drifted from it. They flag, they never mutate.
package planner

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// splitStayDistanceKm is the inter-region distance above which the strategy
// rules require a split stay.
const splitStayDistanceKm = 40.0

// foodShareLimit is the curation quota: food+nightlife must not exceed this
// share of a region's places.
const foodShareLimit = 0.40

// PolicyFlag marks one curated region (or the overall strategy) that
// violates a prompt-level policy rule.
type PolicyFlag struct {
	Region string `json:"region,omitempty"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// CheckCuration flags regions whose curated places violate the quota rules:
// food+nightlife above 40%, missing "main" non-food landmark, or more than
// five "main" entries.
func CheckCuration(st Structure) []PolicyFlag {
	var flags []PolicyFlag
	for _, r := range st.Regions {
		if len(r.Places) == 0 {
			continue
		}
		food, mains, mainLandmarks := 0, 0, 0
		for _, p := range r.Places {
			if foodCategories[p.Category] {
				food++
			}
			if p.Priority == "main" {
				mains++
				if !foodCategories[p.Category] {
					mainLandmarks++
				}
			}
		}
		if share := float64(food) / float64(len(r.Places)); share > foodShareLimit {
			flags = append(flags, PolicyFlag{
				Region: r.ID,
				Rule:   "food_share",
				Detail: fmt.Sprintf("food+nightlife is %.0f%% of %d places (limit 40%%)", share*100, len(r.Places)),
			})
		}
		if mainLandmarks == 0 {
			flags = append(flags, PolicyFlag{
				Region: r.ID,
				Rule:   "main_landmark",
				Detail: "no main non-food landmark",
			})
		}
		if mains > 5 {
			flags = append(flags, PolicyFlag{
				Region: r.ID,
				Rule:   "main_cap",
				Detail: fmt.Sprintf("%d main places (cap 5)", mains),
			})
		}
	}
	return flags
}

// CheckStrategy flags a travel profile inconsistent with its regions:
// ideal_days below the region count, a missing split stay despite far-apart
// regions, or a split stay marked compact.
func CheckStrategy(dc DestinationContext) []PolicyFlag {
	var flags []PolicyFlag

	if dc.TravelProfile.IdealDays < len(dc.Regions) {
		flags = append(flags, PolicyFlag{
			Rule:   "ideal_days_floor",
			Detail: fmt.Sprintf("ideal_days %d below region count %d", dc.TravelProfile.IdealDays, len(dc.Regions)),
		})
	}

	if maxSep, ok := MaxRegionSeparationKm(dc.Regions); ok {
		if maxSep > splitStayDistanceKm && !dc.TravelProfile.NeedsSplitStay {
			flags = append(flags, PolicyFlag{
				Rule:   "split_stay",
				Detail: fmt.Sprintf("regions %.0f km apart but needs_split_stay is false", maxSep),
			})
		}
	}

	if dc.TravelProfile.NeedsSplitStay && dc.TravelProfile.Spread != "wide" {
		flags = append(flags, PolicyFlag{
			Rule:   "split_stay_spread",
			Detail: "needs_split_stay requires spread = wide",
		})
	}
	return flags
}

// CheckCoherence flags regions whose place radius contradicts the declared
// density (walkable <=2 km for high, <=10 km for medium).
func CheckCoherence(r Region) []PolicyFlag {
	radius, ok := RegionRadiusKm(r)
	if !ok {
		return nil
	}
	limit := math.Inf(1)
	switch r.Density {
	case "high":
		limit = 2.0
	case "medium":
		limit = 10.0
	}
	if radius > limit {
		return []PolicyFlag{{
			Region: r.ID,
			Rule:   "density_radius",
			Detail: fmt.Sprintf("radius %.1f km exceeds %s-density limit %.0f km", radius, r.Density, limit),
		}}
	}
	return nil
}

// RegionCentroid averages the coordinates of the region's located places.
// ok is false when no place carries coordinates.
func RegionCentroid(r Region) (lat, lon float64, ok bool) {
	n := 0
	for _, p := range r.Places {
		if p.Lat == nil || p.Lon == nil {
			continue
		}
		lat += *p.Lat
		lon += *p.Lon
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return lat / float64(n), lon / float64(n), true
}

// RegionRadiusKm is the max distance from the centroid to any located place.
func RegionRadiusKm(r Region) (float64, bool) {
	clat, clon, ok := RegionCentroid(r)
	if !ok {
		return 0, false
	}
	var radius float64
	for _, p := range r.Places {
		if p.Lat == nil || p.Lon == nil {
			continue
		}
		if d := haversineKm(clat, clon, *p.Lat, *p.Lon); d > radius {
			radius = d
		}
	}
	return radius, true
}

// MaxRegionSeparationKm is the largest centroid-to-centroid distance between
// any two regions. ok is false with fewer than two located regions.
func MaxRegionSeparationKm(regions []Region) (float64, bool) {
	type point struct{ lat, lon float64 }
	var pts []point
	for _, r := range regions {
		if lat, lon, ok := RegionCentroid(r); ok {
			pts = append(pts, point{lat, lon})
		}
	}
	if len(pts) < 2 {
		return 0, false
	}
	var max float64
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if d := haversineKm(pts[i].lat, pts[i].lon, pts[j].lat, pts[j].lon); d > max {
				max = d
			}
		}
	}
	return max, true
}
