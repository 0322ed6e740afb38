// Package planner turns a destination name and raw geotagged places into a
// validated destination context: a four-stage LLM pipeline (fetch-profile,
// structure, curate, strategize) with JSON extraction and a hard schema gate.
package planner

// The stage prompts carry the actual planning policy (clustering distances,
// curation quotas, strategy rules). The pipeline cannot re-derive these
// rules itself, so the text is load-bearing: changing a threshold here
// changes observable behaviour.

const fetchProfilePrompt = `
You are a travel destination analyzer. Given a destination name, determine what types of places are worth fetching from OpenStreetMap for travel itinerary planning.

TASK:
Analyze the destination and output a structured FetchProfile selecting ONLY from the valid OSM tag menu below.

VALID OSM TAG MENU (you MUST pick only from these):

ANCHOR tags (landmarks/attractions):
  natural=beach, natural=peak, natural=cave_entrance, natural=water
  waterway=waterfall
  historic=fort, historic=castle, historic=monument, historic=ruins, historic=palace
  tourism=attraction, tourism=museum, tourism=viewpoint, tourism=zoo, tourism=camp_site
  amenity=place_of_worship
  leisure=park, leisure=nature_reserve, leisure=garden
  man_made=ghat

LIFESTYLE tags (food/dining):
  amenity=restaurant, amenity=cafe, amenity=fast_food, amenity=ice_cream

EXTRAS tags (nightlife/wellness/other):
  amenity=bar, amenity=nightclub, amenity=pub
  leisure=spa
  shop=bakery

RULES:
1. Pick 3-8 anchor tags most relevant to the destination. Prioritize what the place is FAMOUS for.
2. Always include amenity=restaurant and amenity=cafe in lifestyle.
3. Set priority "high" for the destination's signature attraction types.
4. Set limits based on destination spread:
   - Compact cities (Varanasi, Jaipur, Udaipur): anchor_limit=300, lifestyle_limit=200, extras_limit=100
   - Wide/state-level areas (Goa, Kerala, Rajasthan): anchor_limit=400, lifestyle_limit=300, extras_limit=200
5. destination_type should be a short snake_case label (e.g. "beach_heritage", "spiritual_cultural", "adventure_nature").

OUTPUT FORMAT (JSON only, no explanations):
{
  "destination_type": "<type>",
  "anchor_tags": [
    {"key": "<osm_key>", "value": "<osm_value>", "priority": "high|medium|low"},
    ...
  ],
  "lifestyle_tags": [
    {"key": "<osm_key>", "value": "<osm_value>", "priority": "medium"},
    ...
  ],
  "extras_tags": [
    {"key": "<osm_key>", "value": "<osm_value>", "priority": "low"},
    ...
  ],
  "anchor_limit": 400,
  "lifestyle_limit": 300,
  "extras_limit": 200
}

EXAMPLES:
- Goa → anchor: beach(high), fort(high), monument(medium), place_of_worship(medium), viewpoint(low)
- Varanasi → anchor: place_of_worship(high), ghat(high), museum(medium), monument(medium)
- Rishikesh → anchor: place_of_worship(high), peak(high), waterfall(medium), viewpoint(medium)
- Jaipur → anchor: fort(high), palace(high), museum(high), monument(medium), place_of_worship(medium), garden(low)
`

const structurePrompt = `
You are a geographic structuring engine.

TASK:
Given a destination and a list of places with coordinates and tags, group them into geographically coherent regions.

STRICT RULES:

1. Regions must be spatially coherent clusters.
   * Majority of places must be within 5–10 km of each other.
   * If majority are walkable (≤2 km), density = "high".
   * If short drive required (≤10 km), density = "medium".
   * If spread out (>10 km radius), density = "low".

2. Inland vs Coastal separation:
   * Beaches must NOT be grouped with inland waterfalls/forests if >20 km apart.
   * Create separate inland/nature region if needed.

3. Region count:
   * Compact destination → 2–4 regions.
   * Wide destination → 3–6 regions.
   * Never exceed 6 regions.
   * Never return only 1 region unless destination is extremely compact.

4. Anchor requirement & Quality Limits:
   * Every region must contain at least 1 major non-food landmark (beach, fort, temple, major nature, etc.).
   * If a region has only food/nightlife, merge it with nearest valid region.
   * ⚠️ CRITICAL: **You must prioritize keeping places with the highest ` + "`score`" + `. Do NOT drop famous, high-scoring landmarks.**
   * ⚠️ CRITICAL: **Output at least 20-30 places per region** (if available in input) to give downstream curators enough options. Do not aggressively prune the list.

5. Distinct beaches must remain separate entries (Calangute ≠ Baga ≠ Candolim).

OUTPUT JSON:

{
  "name": "<destination>",
  "regions": [
    {
      "id": "<snake_case>",
      "name": "<human name>",
      "density": "high|medium|low",
      "places": [
        { "name": "<clean name>" }
      ]
    }
  ]
}

CRITICAL INSTRUCTION: You MUST output ONLY VALID JSON. Do not write Python scripts, pseudo-code, or explanations. Do not generate code to process the data, you must process the data yourself and output the final JSON arrays.
`

const curatePrompt = `
You are a travel curator operating inside pre-defined geographic regions.

TASK:
For each region:
* Assign category, subcategory, highlights, best_time
* Decide priority: main vs optional
* Classify meal_type for food/nightlife

CURATION RULES:

1. At least one "main" non-food landmark per region.
2. Food + nightlife combined must not exceed 40% of region places.
3. Chains must be optional.
4. Do not include weak filler restaurants.
5. Every region MUST include 2-4 food/restaurant places from the metadata pool. Nature-heavy regions should still include nearby cafes or restaurants.
6. best_time must reflect realistic visiting conditions.
7. Limit "main" priority to 3-5 top landmarks per region. Remaining non-food should be "optional".
8. ⚠️ CRITICAL: Use the EXACT place name from the input. Do NOT rename, reword, shorten, or embellish any place name. If the input says "Baga Beach", output must say "Baga Beach" — not "Baga Shoreline" or "Baga".
9. ⚠️ CRITICAL: Only select places from the metadata pool. Never invent or add new places.
10. ⚠️ CRITICAL: **Do NOT arbitrarily drop valid attractions.** You must return all valid places from the input region to ensure the scheduling algorithm has enough options.

CATEGORIES — use ONLY these exact strings:
beach, fort, palace, temple, ghat, monument, ruins, cave, museum, viewpoint,
peak, waterfall, island, lake, garden, zoo, nature, park, attraction,
restaurant, cafe, nightlife, spa, camping, other

meal_type required for restaurant/cafe/nightlife, null otherwise.

Return updated JSON with enriched fields.
Structure must match input:
{
  "name": "...",
  "regions": [ ... ]
}
No explanations.
`

const strategizePrompt = `
You are a travel strategy engine.

TASK:
Based on regions, determine:
* spread: compact or wide
* needs_split_stay: true/false
* min_days
* ideal_days

RULES:

1. ideal_days must be >= number of regions.
2. If regions are >40 km apart → needs_split_stay = true.
3. If majority density is high → compact.
4. min_days should reflect realistic coverage without rushing.
5. If needs_split_stay is true, spread MUST be "wide", not "compact".

Return ONLY a JSON object containing the travel profile attributes.
DO NOT return the regions array.

Example Output:
{
  "spread": "compact",
  "needs_split_stay": false,
  "min_days": 3,
  "ideal_days": 4
}

CRITICAL INSTRUCTION: You MUST output ONLY VALID JSON. Do not write Python scripts, pseudo-code, or explanations.
`
