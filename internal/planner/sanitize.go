package planner

import (
	"strings"
)

// Sanitizer conforms curated oracle output to the strict schema before the
// hard gate: it removes places the model invented, restores exact pool
// names, backfills coordinates, and auto-corrects category/meal_type drift.
// Used by the combined pipeline only; the staged endpoints return raw stage
// output untouched.
type Sanitizer struct {
	pool []MetaPlace
}

func NewSanitizer(pool []MetaPlace) *Sanitizer {
	return &Sanitizer{pool: pool}
}

// fuzzyThreshold is the similarity ratio above which two names count as the
// same place (catches minor renames and typos the curator introduces).
const fuzzyThreshold = 0.82

// categoryAliases maps common model drift onto the closed category set.
var categoryAliases = map[string]string{
	"bar":              "nightlife",
	"pub":              "nightlife",
	"club":             "nightlife",
	"nightclub":        "nightlife",
	"church":           "temple",
	"mosque":           "temple",
	"shrine":           "temple",
	"place_of_worship": "temple",
	"food":             "restaurant",
	"dining":           "restaurant",
	"eatery":           "restaurant",
	"nature_reserve":   "nature",
	"forest":           "nature",
	"gardens":          "garden",
	"castle":           "fort",
	"camp_site":        "camping",
}

var foodCategories = map[string]bool{
	"restaurant": true,
	"cafe":       true,
	"nightlife":  true,
}

// technicalSpecialtyTags are raw OSM keys that leak into specialty lists
// and carry no traveller-facing meaning.
var technicalSpecialtyTags = map[string]bool{
	"wikidata": true, "source": true, "amenity": true, "osm_id": true,
	"wheelchair": true, "website": true, "opening_hours": true,
	"historic": true, "name": true, "tourism": true, "waterway": true,
	"alt_name": true, "description": true, "internet_access": true,
	"cuisine": true, "attraction": true,
}

// Apply sanitizes the context in place and returns it.
func (z *Sanitizer) Apply(dc *DestinationContext) *DestinationContext {
	coords := make(map[string]MetaPlace, len(z.pool))
	for _, mp := range z.pool {
		if mp.Name != "" && mp.Lat != 0 && mp.Lon != 0 {
			coords[normalizeName(mp.Name)] = mp
		}
	}

	for i := range dc.Regions {
		region := &dc.Regions[i]
		region.Places = z.filterToPool(region.Places)
		for j := range region.Places {
			p := &region.Places[j]
			z.hydrateCoords(p, coords)
			fixCategory(p)
			fixMealType(p)
			cleanSpecialty(p)
		}
	}
	return dc
}

// filterToPool drops places absent from the metadata pool and restores the
// pool's exact spelling for fuzzy matches.
func (z *Sanitizer) filterToPool(places []Place) []Place {
	kept := places[:0]
	for _, p := range places {
		norm := strings.ToLower(strings.TrimSpace(p.Name))
		if norm == "" {
			continue
		}
		match, ok := z.findPoolName(norm)
		if !ok {
			continue
		}
		p.Name = match
		kept = append(kept, p)
	}
	return kept
}

func (z *Sanitizer) findPoolName(norm string) (string, bool) {
	// Tier 1: exact match.
	for _, mp := range z.pool {
		if strings.ToLower(strings.TrimSpace(mp.Name)) == norm {
			return mp.Name, true
		}
	}
	// Tier 2: fuzzy match.
	for _, mp := range z.pool {
		if similarity(norm, strings.ToLower(strings.TrimSpace(mp.Name))) >= fuzzyThreshold {
			return mp.Name, true
		}
	}
	// Tier 3: substring ("Chapora" vs "Chapora Fort").
	for _, mp := range z.pool {
		raw := strings.ToLower(strings.TrimSpace(mp.Name))
		if len(norm) >= 4 && (strings.Contains(raw, norm) || strings.Contains(norm, raw)) {
			return mp.Name, true
		}
	}
	return "", false
}

func (z *Sanitizer) hydrateCoords(p *Place, coords map[string]MetaPlace) {
	if p.Lat != nil && p.Lon != nil {
		return
	}
	mp, ok := coords[normalizeName(p.Name)]
	if !ok {
		return
	}
	lat, lon := mp.Lat, mp.Lon
	p.Lat, p.Lon = &lat, &lon
}

func fixCategory(p *Place) {
	c := strings.ToLower(strings.TrimSpace(p.Category))
	if c == "" {
		p.Category = "other"
		return
	}
	if validCategories[c] {
		p.Category = c
		return
	}
	if alias, ok := categoryAliases[c]; ok {
		if p.Subcategory == "" {
			p.Subcategory = c
		}
		p.Category = alias
		return
	}
	if p.Subcategory == "" {
		p.Subcategory = c
	}
	p.Category = "attraction"
}

func fixMealType(p *Place) {
	if !foodCategories[p.Category] {
		p.MealType = ""
		return
	}
	if p.MealType != "" {
		return
	}
	switch {
	case p.Category == "cafe" || p.Subcategory == "cafe":
		p.MealType = "cafe"
	case p.Category == "nightlife":
		p.MealType = "bar"
	case p.BestTime == "morning":
		p.MealType = "breakfast"
	case p.BestTime == "evening" || p.BestTime == "night":
		p.MealType = "dinner"
	default:
		p.MealType = "lunch"
	}
}

func cleanSpecialty(p *Place) {
	if p.Specialty == nil {
		p.Specialty = []string{}
		return
	}
	kept := p.Specialty[:0]
	for _, tag := range p.Specialty {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || technicalSpecialtyTags[t] || strings.Contains(t, ":") {
			continue
		}
		kept = append(kept, tag)
	}
	p.Specialty = kept
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// similarity returns the Levenshtein ratio: 1.0 identical, 0.0 disjoint.
func similarity(a, b string) float64 {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 1.0
	}
	return float64(longer-levenshtein(a, b)) / float64(longer)
}

func levenshtein(a, b string) int {
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + minInt(prev[j], curr[j-1], prev[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
