package planner

import (
	"fmt"
)

// SchemaVersion selects which constraint set the validator enforces.
// The schema drifted over the system's history and the newest version is not
// a strict superset of the older one, so the choice is explicit config
// rather than a silent default.
type SchemaVersion int

const (
	// SchemaV1: recommended_days >= 1, category free-form.
	SchemaV1 SchemaVersion = 1
	// SchemaV2: recommended_days >= 0, category restricted to the closed set.
	SchemaV2 SchemaVersion = 2
)

// ValidationError is a field-addressed schema violation. A single violation
// invalidates the whole structure; partial acceptance is not supported.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// validTagValues is the curated OSM menu: values are valid only under their
// own key, not globally.
var validTagValues = map[string]map[string]bool{
	"natural":  set("beach", "peak", "cave_entrance", "water"),
	"historic": set("fort", "castle", "monument", "ruins", "palace"),
	"tourism":  set("attraction", "museum", "viewpoint", "zoo", "camp_site"),
	"amenity": set("restaurant", "cafe", "fast_food", "ice_cream", "bar",
		"nightclub", "pub", "place_of_worship"),
	"leisure":  set("park", "nature_reserve", "garden", "spa"),
	"waterway": set("waterfall"),
	"man_made": set("ghat"),
	"shop":     set("bakery", "mall"),
}

var (
	validPriorities    = set("high", "medium", "low")
	validDensities     = set("high", "medium", "low")
	validPlacePriority = set("main", "optional")
	validSpreads       = set("compact", "wide")

	// validCategories is the closed set enforced under SchemaV2, matching the
	// menu the curate stage is instructed to pick from.
	validCategories = set(
		"beach", "fort", "palace", "temple", "ghat", "monument", "ruins",
		"cave", "museum", "viewpoint", "peak", "waterfall", "island", "lake",
		"garden", "zoo", "nature", "park", "attraction", "restaurant", "cafe",
		"nightlife", "spa", "camping", "other",
	)
)

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// Schema validates parsed pipeline values against the typed entity
// definitions. Methods apply declared defaults in place, then check every
// invariant; the first violation is returned and the value must be discarded.
type Schema struct {
	Version SchemaVersion
}

// NewSchema clamps unknown versions to SchemaV2.
func NewSchema(version int) Schema {
	if version == int(SchemaV1) {
		return Schema{Version: SchemaV1}
	}
	return Schema{Version: SchemaV2}
}

func (s Schema) FetchProfile(p *FetchProfile) error {
	if p.DestinationType == "" {
		return invalid("destination_type", "must not be empty")
	}
	if n := len(p.AnchorTags); n < 1 || n > 8 {
		return invalid("anchor_tags", "must contain 1-8 entries, got %d", n)
	}
	if n := len(p.LifestyleTags); n < 1 || n > 5 {
		return invalid("lifestyle_tags", "must contain 1-5 entries, got %d", n)
	}
	for _, group := range []struct {
		field string
		tags  []TagEntry
	}{
		{"anchor_tags", p.AnchorTags},
		{"lifestyle_tags", p.LifestyleTags},
		{"extras_tags", p.ExtrasTags},
	} {
		for i := range group.tags {
			if err := s.tagEntry(fmt.Sprintf("%s[%d]", group.field, i), &group.tags[i]); err != nil {
				return err
			}
		}
	}

	if p.AnchorLimit == 0 {
		p.AnchorLimit = 250
	}
	if p.LifestyleLimit == 0 {
		p.LifestyleLimit = 200
	}
	if p.ExtrasLimit == 0 {
		p.ExtrasLimit = 100
	}
	if p.AnchorLimit < 50 || p.AnchorLimit > 1000 {
		return invalid("anchor_limit", "must be within [50,1000], got %d", p.AnchorLimit)
	}
	if p.LifestyleLimit < 50 || p.LifestyleLimit > 500 {
		return invalid("lifestyle_limit", "must be within [50,500], got %d", p.LifestyleLimit)
	}
	if p.ExtrasLimit < 0 || p.ExtrasLimit > 300 {
		return invalid("extras_limit", "must be within [0,300], got %d", p.ExtrasLimit)
	}
	return nil
}

func (s Schema) tagEntry(field string, t *TagEntry) error {
	values, ok := validTagValues[t.Key]
	if !ok {
		return invalid(field+".key", "invalid OSM key %q", t.Key)
	}
	if !values[t.Value] {
		return invalid(field+".value", "invalid value %q for key %q", t.Value, t.Key)
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	if !validPriorities[t.Priority] {
		return invalid(field+".priority", "must be high, medium or low, got %q", t.Priority)
	}
	return nil
}

func (s Schema) DestinationContext(dc *DestinationContext) error {
	if dc.Name == "" {
		return invalid("name", "must not be empty")
	}
	if len(dc.Regions) == 0 {
		return invalid("regions", "destination must have at least one region")
	}
	for i := range dc.Regions {
		if err := s.Region(fmt.Sprintf("regions[%d]", i), &dc.Regions[i]); err != nil {
			return err
		}
	}
	return s.travelProfile("travel_profile", &dc.TravelProfile)
}

func (s Schema) Region(field string, r *Region) error {
	if r.ID == "" {
		return invalid(field+".id", "must not be empty")
	}
	if r.Name == "" {
		return invalid(field+".name", "must not be empty")
	}
	if !validDensities[r.Density] {
		return invalid(field+".density", "must be high, medium or low, got %q", r.Density)
	}
	minDays := 1
	if s.Version >= SchemaV2 {
		minDays = 0
	}
	if r.RecommendedDays < minDays {
		return invalid(field+".recommended_days", "must be >= %d, got %d", minDays, r.RecommendedDays)
	}
	if len(r.Places) == 0 {
		return invalid(field+".places", "region must contain at least one place")
	}
	for i := range r.Places {
		if err := s.place(fmt.Sprintf("%s.places[%d]", field, i), &r.Places[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s Schema) place(field string, p *Place) error {
	if p.Name == "" {
		return invalid(field+".name", "must not be empty")
	}
	if !validPlacePriority[p.Priority] {
		return invalid(field+".priority", "must be main or optional, got %q", p.Priority)
	}
	if p.Category == "" {
		p.Category = "other"
	}
	if p.Subcategory == "" {
		p.Subcategory = "other"
	}
	if p.BestTime == "" {
		p.BestTime = "anytime"
	}
	if s.Version >= SchemaV2 && !validCategories[p.Category] {
		return invalid(field+".category", "unknown category %q", p.Category)
	}
	return nil
}

// TravelProfile validates the trip strategy, including the cross-field
// ideal_days >= min_days rule.
func (s Schema) TravelProfile(tp *TravelProfile) error {
	return s.travelProfile("", tp)
}

func (s Schema) travelProfile(prefix string, tp *TravelProfile) error {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}
	if !validSpreads[tp.Spread] {
		return invalid(field("spread"), "must be compact or wide, got %q", tp.Spread)
	}
	if tp.MinDays < 1 {
		return invalid(field("min_days"), "must be >= 1, got %d", tp.MinDays)
	}
	if tp.IdealDays < 1 {
		return invalid(field("ideal_days"), "must be >= 1, got %d", tp.IdealDays)
	}
	if tp.IdealDays < tp.MinDays {
		return invalid(field("ideal_days"), "must be >= min_days (%d), got %d", tp.MinDays, tp.IdealDays)
	}
	return nil
}
