package planner

import (
	"testing"
)

func ptr(v float64) *float64 { return &v }

func placeAt(name, category, priority string, lat, lon float64) Place {
	return Place{Name: name, Category: category, Priority: priority, Lat: ptr(lat), Lon: ptr(lon)}
}

func TestHaversineKm(t *testing.T) {
	// Panaji to Margao is roughly 27 km great-circle.
	d := haversineKm(15.4909, 73.8278, 15.2832, 73.9862)
	if d < 25 || d > 30 {
		t.Errorf("Panaji-Margao = %.1f km, expected ~27", d)
	}
	if z := haversineKm(15.5, 73.7, 15.5, 73.7); z != 0 {
		t.Errorf("identical points = %f, want 0", z)
	}
}

func TestCheckCuration(t *testing.T) {
	tests := []struct {
		name      string
		region    Region
		wantRules []string
	}{
		{
			name: "clean region",
			region: Region{ID: "ok", Places: []Place{
				{Name: "Fort", Category: "fort", Priority: "main"},
				{Name: "Beach", Category: "beach", Priority: "main"},
				{Name: "Diner", Category: "restaurant", Priority: "optional"},
			}},
			wantRules: nil,
		},
		{
			name: "food heavy",
			region: Region{ID: "foodie", Places: []Place{
				{Name: "Fort", Category: "fort", Priority: "main"},
				{Name: "A", Category: "restaurant", Priority: "optional"},
				{Name: "B", Category: "cafe", Priority: "optional"},
				{Name: "C", Category: "nightlife", Priority: "optional"},
			}},
			wantRules: []string{"food_share"},
		},
		{
			name: "no main landmark",
			region: Region{ID: "anchorless", Places: []Place{
				{Name: "A", Category: "restaurant", Priority: "main"},
				{Name: "B", Category: "beach", Priority: "optional"},
			}},
			wantRules: []string{"main_landmark"},
		},
		{
			name: "too many mains",
			region: Region{ID: "greedy", Places: []Place{
				{Name: "A", Category: "fort", Priority: "main"},
				{Name: "B", Category: "beach", Priority: "main"},
				{Name: "C", Category: "museum", Priority: "main"},
				{Name: "D", Category: "temple", Priority: "main"},
				{Name: "E", Category: "palace", Priority: "main"},
				{Name: "F", Category: "viewpoint", Priority: "main"},
				{Name: "G", Category: "park", Priority: "optional"},
				{Name: "H", Category: "lake", Priority: "optional"},
				{Name: "I", Category: "garden", Priority: "optional"},
				{Name: "J", Category: "zoo", Priority: "optional"},
				{Name: "K", Category: "ruins", Priority: "optional"},
				{Name: "L", Category: "cave", Priority: "optional"},
				{Name: "M", Category: "peak", Priority: "optional"},
				{Name: "N", Category: "ghat", Priority: "optional"},
				{Name: "O", Category: "island", Priority: "optional"},
			}},
			wantRules: []string{"main_cap"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := CheckCuration(Structure{Name: "X", Regions: []Region{tt.region}})
			var rules []string
			for _, f := range flags {
				rules = append(rules, f.Rule)
				if f.Region != tt.region.ID {
					t.Errorf("flag region = %q, want %q", f.Region, tt.region.ID)
				}
			}
			if len(rules) != len(tt.wantRules) {
				t.Fatalf("rules = %v, want %v", rules, tt.wantRules)
			}
			for i := range rules {
				if rules[i] != tt.wantRules[i] {
					t.Errorf("rules = %v, want %v", rules, tt.wantRules)
				}
			}
		})
	}
}

func TestCheckStrategy(t *testing.T) {
	// North and South Goa centroids are ~65 km apart.
	north := Region{ID: "north", Places: []Place{placeAt("Baga", "beach", "main", 15.5524, 73.7517)}}
	south := Region{ID: "south", Places: []Place{placeAt("Palolem", "beach", "main", 15.0100, 74.0230)}}

	t.Run("far apart without split stay", func(t *testing.T) {
		dc := DestinationContext{
			Regions:       []Region{north, south},
			TravelProfile: TravelProfile{Spread: "compact", NeedsSplitStay: false, MinDays: 2, IdealDays: 1},
		}
		flags := CheckStrategy(dc)
		rules := map[string]bool{}
		for _, f := range flags {
			rules[f.Rule] = true
		}
		if !rules["ideal_days_floor"] {
			t.Error("ideal_days below region count not flagged")
		}
		if !rules["split_stay"] {
			t.Error("missing split stay not flagged")
		}
	})

	t.Run("split stay must be wide", func(t *testing.T) {
		dc := DestinationContext{
			Regions:       []Region{north},
			TravelProfile: TravelProfile{Spread: "compact", NeedsSplitStay: true, MinDays: 2, IdealDays: 3},
		}
		flags := CheckStrategy(dc)
		if len(flags) != 1 || flags[0].Rule != "split_stay_spread" {
			t.Errorf("flags = %+v, want single split_stay_spread", flags)
		}
	})

	t.Run("consistent profile", func(t *testing.T) {
		dc := DestinationContext{
			Regions:       []Region{north, south},
			TravelProfile: TravelProfile{Spread: "wide", NeedsSplitStay: true, MinDays: 3, IdealDays: 5},
		}
		if flags := CheckStrategy(dc); len(flags) != 0 {
			t.Errorf("unexpected flags: %+v", flags)
		}
	})
}

func TestCheckCoherence(t *testing.T) {
	// ~0.5 km spread around Calangute.
	tight := Region{ID: "tight", Density: "high", Places: []Place{
		placeAt("A", "beach", "main", 15.5440, 73.7550),
		placeAt("B", "cafe", "optional", 15.5470, 73.7560),
	}}
	if flags := CheckCoherence(tight); len(flags) != 0 {
		t.Errorf("tight high-density region flagged: %+v", flags)
	}

	// ~30 km spread declared high density.
	sprawl := Region{ID: "sprawl", Density: "high", Places: []Place{
		placeAt("A", "beach", "main", 15.5524, 73.7517),
		placeAt("B", "beach", "main", 15.2832, 73.9862),
	}}
	flags := CheckCoherence(sprawl)
	if len(flags) != 1 || flags[0].Rule != "density_radius" {
		t.Fatalf("flags = %+v, want density_radius", flags)
	}

	// Same spread is fine for low density.
	sprawl.Density = "low"
	if flags := CheckCoherence(sprawl); len(flags) != 0 {
		t.Errorf("low-density region flagged: %+v", flags)
	}

	// No coordinates, nothing to check.
	blind := Region{ID: "blind", Density: "high", Places: []Place{{Name: "X"}}}
	if flags := CheckCoherence(blind); flags != nil {
		t.Errorf("unlocated region flagged: %+v", flags)
	}
}

func TestRegionGeometryHelpers(t *testing.T) {
	r := Region{Places: []Place{
		placeAt("A", "beach", "main", 10, 70),
		placeAt("B", "beach", "main", 12, 72),
		{Name: "unlocated"},
	}}
	lat, lon, ok := RegionCentroid(r)
	if !ok || lat != 11 || lon != 71 {
		t.Errorf("centroid = %v,%v ok=%v", lat, lon, ok)
	}

	radius, ok := RegionRadiusKm(r)
	if !ok || radius <= 0 {
		t.Errorf("radius = %v ok=%v", radius, ok)
	}

	if _, _, ok := RegionCentroid(Region{Places: []Place{{Name: "X"}}}); ok {
		t.Error("centroid reported for unlocated region")
	}

	if _, ok := MaxRegionSeparationKm([]Region{r}); ok {
		t.Error("separation reported for single region")
	}
	sep, ok := MaxRegionSeparationKm([]Region{
		{Places: []Place{placeAt("A", "beach", "main", 15.55, 73.75)}},
		{Places: []Place{placeAt("B", "beach", "main", 15.01, 74.02)}},
	})
	if !ok || sep < 50 || sep > 80 {
		t.Errorf("separation = %.1f ok=%v, expected ~65 km", sep, ok)
	}
}
