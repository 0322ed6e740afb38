package places

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"kairos/internal/planner"
)

const (
	poolCap      = 200
	anchorMinPct = 0.40
	foodMaxPct   = 0.35
)

// blockedChains filters generic franchises out of the pool. A trip plan
// recommending Starbucks is worse than one with no cafe at all.
var blockedChains = []string{
	"cafe coffee day", "ccd", "starbucks", "barista",
	"mcdonald", "burger king", "kfc", "domino", "pizza hut", "subway",
	"costa coffee", "chai point", "dunkin",
}

var anchorCategories = map[string]bool{
	"beach": true, "fort": true, "museum": true, "viewpoint": true,
	"waterfall": true, "monument": true, "peak": true, "island": true,
	"temple": true, "ghat": true, "cave": true, "garden": true,
	"palace": true, "ruins": true, "attraction": true, "zoo": true,
	"park": true, "nature": true,
}

var foodPoolCategories = map[string]bool{
	"restaurant": true, "cafe": true, "nightlife": true,
}

// categoryBaseScores reflect trip-planning value, not OSM prominence.
// Forts and waterfalls outrank museums for the destinations this serves.
var categoryBaseScores = map[string]float64{
	"beach":      70,
	"waterfall":  75,
	"fort":       75,
	"island":     60,
	"museum":     45,
	"viewpoint":  40,
	"peak":       35,
	"attraction": 30,
}

// Normalize converts raw Overpass elements into scored pool entries:
// tag-derived category, franchise filter, proximity dedup, and a quality
// score blending category value, commercial-hub density, and metadata
// richness.
func Normalize(elements []Element) []planner.MetaPlace {
	type candidate struct {
		id       int64
		name     string
		lat, lon float64
		tags     map[string]string
		category string
		hub      int
	}

	var cands []candidate
	for _, e := range elements {
		name := e.Tags["name"]
		if name == "" {
			continue
		}
		lat, lon := e.Latitude(), e.Longitude()
		if lat == 0 && lon == 0 {
			continue
		}
		if isBlockedChain(name) {
			continue
		}
		cands = append(cands, candidate{
			id:       e.ID,
			name:     name,
			lat:      lat,
			lon:      lon,
			tags:     e.Tags,
			category: categoryFromTags(e.Tags),
		})
	}

	// Commercial density: amenities within ~1 km are a popularity proxy
	// for everything around them. Quadratic but small N.
	for i := range cands {
		for j := range cands {
			if i == j {
				continue
			}
			c := &cands[j]
			if !foodPoolCategories[c.category] && c.tags["shop"] == "" {
				continue
			}
			if math.Abs(c.lat-cands[i].lat) > 0.01 || math.Abs(c.lon-cands[i].lon) > 0.01 {
				continue
			}
			if distanceKm(cands[i].lat, cands[i].lon, c.lat, c.lon) <= 1.0 {
				cands[i].hub++
			}
		}
	}

	// Dedup: richest-tagged element wins, nearby same-name elements merge
	// into it. Big physical anchors get a looser distance threshold.
	sort.SliceStable(cands, func(i, j int) bool {
		return len(cands[i].tags) > len(cands[j].tags)
	})

	merged := make(map[int64]bool, len(cands))
	var out []planner.MetaPlace
	for i := range cands {
		p := &cands[i]
		if merged[p.id] {
			continue
		}
		merged[p.id] = true

		threshold := 0.1
		if p.category == "beach" || p.category == "fort" || p.category == "island" {
			threshold = 0.5
		}
		key := placeKey(p.name)
		for j := i + 1; j < len(cands); j++ {
			c := &cands[j]
			if merged[c.id] {
				continue
			}
			if distanceKm(p.lat, p.lon, c.lat, c.lon) > threshold {
				continue
			}
			ckey := placeKey(c.name)
			if key != ckey && !strings.Contains(key, ckey) && !strings.Contains(ckey, key) {
				continue
			}
			merged[c.id] = true
			for k, v := range c.tags {
				if _, ok := p.tags[k]; !ok {
					p.tags[k] = v
				}
			}
			if c.hub > p.hub {
				p.hub = c.hub
			}
		}

		out = append(out, planner.MetaPlace{
			Name:        p.name,
			Lat:         p.lat,
			Lon:         p.lon,
			Category:    p.category,
			Subcategory: subcategoryFromTags(p.tags),
			Score:       score(p.category, p.hub, p.tags),
			Specialty:   specialtyFromTags(p.tags),
		})
	}
	return out
}

// ApplyDiversity enforces the pool composition quotas: at least 40%
// anchors, at most 35% food, the rest filled by quality. Without this,
// food-dense towns turn the pool into a restaurant directory.
func ApplyDiversity(pool []planner.MetaPlace) []planner.MetaPlace {
	var anchors, food, others []planner.MetaPlace
	for _, p := range pool {
		switch {
		case anchorCategories[p.Category]:
			anchors = append(anchors, p)
		case foodPoolCategories[p.Category]:
			food = append(food, p)
		default:
			others = append(others, p)
		}
	}
	sortByScore(anchors)
	sortByScore(food)
	sortByScore(others)

	anchorSlots := int(math.Ceil(poolCap * anchorMinPct))
	foodSlots := int(math.Floor(poolCap * foodMaxPct))

	result := append([]planner.MetaPlace{}, take(anchors, anchorSlots)...)
	result = append(result, take(food, foodSlots)...)

	overflow := append([]planner.MetaPlace{}, others...)
	overflow = append(overflow, drop(anchors, anchorSlots)...)
	overflow = append(overflow, drop(food, foodSlots)...)
	sortByScore(overflow)

	if remaining := poolCap - len(result); remaining > 0 {
		result = append(result, take(overflow, remaining)...)
	}
	if len(result) > poolCap {
		result = result[:poolCap]
	}
	return result
}

func take(s []planner.MetaPlace, n int) []planner.MetaPlace {
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

func drop(s []planner.MetaPlace, n int) []planner.MetaPlace {
	if n > len(s) {
		return nil
	}
	return s[n:]
}

// sortByScore orders best-first, shuffling ties so low OSM ids don't get a
// permanent advantage.
func sortByScore(s []planner.MetaPlace) {
	rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score > s[j].Score })
}

func isBlockedChain(name string) bool {
	lower := strings.ToLower(name)
	for _, chain := range blockedChains {
		if strings.Contains(lower, chain) {
			return true
		}
	}
	return false
}

func categoryFromTags(tags map[string]string) string {
	switch {
	case tags["natural"] == "beach":
		return "beach"
	case tags["natural"] == "peak":
		return "peak"
	case tags["natural"] == "cave_entrance":
		return "cave"
	case tags["historic"] == "fort" || tags["historic"] == "castle":
		return "fort"
	case tags["historic"] == "monument":
		return "monument"
	case tags["historic"] == "ruins":
		return "ruins"
	case tags["historic"] == "palace":
		return "palace"
	case tags["waterway"] == "waterfall":
		return "waterfall"
	case tags["man_made"] == "ghat":
		return "ghat"
	case tags["tourism"] == "museum":
		return "museum"
	case tags["tourism"] == "viewpoint":
		return "viewpoint"
	case tags["tourism"] == "zoo":
		return "zoo"
	case tags["tourism"] == "camp_site":
		return "camping"
	case tags["tourism"] == "attraction":
		return "attraction"
	case tags["amenity"] == "restaurant" || tags["amenity"] == "fast_food" || tags["amenity"] == "ice_cream":
		return "restaurant"
	case tags["amenity"] == "cafe" || tags["shop"] == "bakery":
		return "cafe"
	case tags["amenity"] == "bar" || tags["amenity"] == "pub" || tags["amenity"] == "nightclub":
		return "nightlife"
	case tags["amenity"] == "place_of_worship":
		return "temple"
	case tags["leisure"] == "park":
		return "park"
	case tags["leisure"] == "nature_reserve":
		return "nature"
	case tags["leisure"] == "garden":
		return "garden"
	case tags["leisure"] == "spa":
		return "spa"
	}
	for _, key := range []string{"tourism", "historic", "natural", "leisure", "amenity"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return "other"
}

func subcategoryFromTags(tags map[string]string) string {
	for _, key := range []string{"tourism", "historic", "natural", "amenity", "leisure"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}

func specialtyFromTags(tags map[string]string) []string {
	cuisine := tags["cuisine"]
	if cuisine == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(cuisine, ";") {
		part = strings.TrimSpace(strings.ReplaceAll(part, "_", " "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// score blends category value, hub density, and metadata richness, then
// soft-scales into 0..100. Places with no tourism signal at all are capped
// so mapped noise cannot outrank real landmarks.
func score(category string, hub int, tags map[string]string) float64 {
	base := 10.0
	if v, ok := categoryBaseScores[category]; ok {
		base = v
	}
	if category == "attraction" && tags["tourism"] == "" && tags["natural"] == "" && tags["historic"] == "" {
		base -= 10
	}

	hubBonus := math.Log(float64(hub)+1) * 15

	meta := 0.0
	if tags["wikipedia"] != "" {
		meta += 30
	}
	if tags["wikidata"] != "" {
		meta += 20
	}
	if tags["website"] != "" || tags["contact:website"] != "" {
		meta += 10
	}
	if tags["image"] != "" {
		meta += 10
	}
	if tags["description"] != "" {
		meta += 10
	}
	if tags["cuisine"] != "" {
		meta += 5
	}
	if tags["opening_hours"] != "" {
		meta += 5
	}

	final := 100 * (1 - math.Exp(-(base+hubBonus+meta)/60))

	hasSignal := tags["wikipedia"] != "" || tags["wikidata"] != "" || tags["image"] != "" ||
		tags["tourism"] != "" || tags["natural"] != "" || tags["historic"] != ""
	if !hasSignal && final > 60 {
		final = 60
	}
	return math.Round(final)
}

func placeKey(name string) string {
	key := strings.ToLower(name)
	for _, suffix := range []string{
		" - blue flag beach", " blue flag beach", " blue flag",
		" sunrise beach", " sunset beach", " beach", " sunrise", " sunset",
	} {
		if strings.HasSuffix(key, suffix) {
			key = strings.TrimSuffix(key, suffix)
			break
		}
	}
	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const r = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return r * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
