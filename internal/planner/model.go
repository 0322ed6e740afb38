package planner

import "encoding/json"

// TagEntry is one OSM key/value pair with a fetch priority.
type TagEntry struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Priority string `json:"priority,omitempty"` // high|medium|low, defaults to medium
}

// FetchProfile describes what categories of points to retrieve for a
// destination before any places exist. Built once per destination by the
// fetch-profile stage, or substituted wholesale by DefaultFetchProfile on
// any failure; immutable thereafter.
type FetchProfile struct {
	DestinationType string     `json:"destination_type"`
	AnchorTags      []TagEntry `json:"anchor_tags"`
	LifestyleTags   []TagEntry `json:"lifestyle_tags"`
	ExtrasTags      []TagEntry `json:"extras_tags"`
	AnchorLimit     int        `json:"anchor_limit"`
	LifestyleLimit  int        `json:"lifestyle_limit"`
	ExtrasLimit     int        `json:"extras_limit"`
}

// MetaPlace is one entry of the metadata pool: a normalized raw place as
// produced by the fetch layer and fed to the structure/curate stages.
type MetaPlace struct {
	Name        string   `json:"name"`
	Lat         float64  `json:"lat,omitempty"`
	Lon         float64  `json:"lon,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Score       float64  `json:"score,omitempty"`
	Specialty   []string `json:"specialty,omitempty"`
}

// Place is a curated point of interest inside a region.
// Lat/Lon are pointers: coordinates exist only once enrichment happened.
type Place struct {
	Name        string   `json:"name"`
	Priority    string   `json:"priority,omitempty"` // main|optional
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Specialty   []string `json:"specialty,omitempty"`
	BestTime    string   `json:"best_time,omitempty"` // morning|afternoon|evening|anytime
	MealType    string   `json:"meal_type,omitempty"` // only for food/nightlife
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
}

// Region is a geographically coherent cluster of places.
type Region struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Density         string  `json:"density"` // high|medium|low
	RecommendedDays int     `json:"recommended_days"`
	Places          []Place `json:"places"`
}

// UnmarshalJSON defaults recommended_days to 1 when the field is omitted.
// An explicit zero survives decoding; the schema version decides whether it
// is acceptable.
func (r *Region) UnmarshalJSON(b []byte) error {
	type region Region
	decoded := region{RecommendedDays: 1}
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}
	*r = Region(decoded)
	return nil
}

// Structure is the shape shared by the structure and curate stages:
// the destination's regions without a travel profile.
type Structure struct {
	Name    string   `json:"name"`
	Regions []Region `json:"regions"`
}

// TravelProfile is the trip-strategy output of the strategize stage.
type TravelProfile struct {
	Spread         string `json:"spread"` // compact|wide
	NeedsSplitStay bool   `json:"needs_split_stay"`
	MinDays        int    `json:"min_days"`
	IdealDays      int    `json:"ideal_days"`
}

// DestinationContext is the final curated output of the combined pipeline.
type DestinationContext struct {
	Name          string        `json:"name"`
	Regions       []Region      `json:"regions"`
	TravelProfile TravelProfile `json:"travel_profile"`
}

// DefaultFetchProfile returns the static fallback used whenever the
// fetch-profile stage fails: a generic profile that covers common
// destinations without guessing anything destination-specific.
func DefaultFetchProfile() FetchProfile {
	return FetchProfile{
		DestinationType: "general_tourism",
		AnchorTags: []TagEntry{
			{Key: "natural", Value: "beach", Priority: "medium"},
			{Key: "historic", Value: "fort", Priority: "medium"},
			{Key: "historic", Value: "monument", Priority: "medium"},
			{Key: "tourism", Value: "attraction", Priority: "medium"},
			{Key: "tourism", Value: "museum", Priority: "medium"},
			{Key: "tourism", Value: "viewpoint", Priority: "medium"},
			{Key: "amenity", Value: "place_of_worship", Priority: "medium"},
		},
		LifestyleTags: []TagEntry{
			{Key: "amenity", Value: "restaurant", Priority: "medium"},
			{Key: "amenity", Value: "cafe", Priority: "medium"},
		},
		ExtrasTags: []TagEntry{
			{Key: "amenity", Value: "bar", Priority: "low"},
			{Key: "leisure", Value: "spa", Priority: "low"},
		},
		AnchorLimit:    400,
		LifestyleLimit: 200,
		ExtrasLimit:    80,
	}
}
