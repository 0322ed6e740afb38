package planner

import (
	"reflect"
	"testing"
)

func testPool() []MetaPlace {
	return []MetaPlace{
		{Name: "Chapora Fort", Lat: 15.6065, Lon: 73.7368, Category: "fort"},
		{Name: "Baga Beach", Lat: 15.5524, Lon: 73.7517, Category: "beach"},
		{Name: "Cafe Lilliput", Lat: 15.5410, Lon: 73.7550, Category: "cafe"},
		{Name: "Tito's Lane", Lat: 15.5500, Lon: 73.7530, Category: "nightlife"},
	}
}

func TestFilterToPoolMatchTiers(t *testing.T) {
	z := NewSanitizer(testPool())

	tests := []struct {
		name     string
		curated  string
		want     string
		wantKept bool
	}{
		{"exact", "Baga Beach", "Baga Beach", true},
		{"case insensitive", "baga beach", "Baga Beach", true},
		{"fuzzy typo", "Chapora Fortt", "Chapora Fort", true},
		{"substring", "Chapora", "Chapora Fort", true},
		{"short substring ignored", "Cap", "", false},
		{"hallucinated", "Sunset Palace Resort", "", false},
		{"empty", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := z.filterToPool([]Place{{Name: tt.curated}})
			if tt.wantKept != (len(kept) == 1) {
				t.Fatalf("kept = %d places", len(kept))
			}
			if tt.wantKept && kept[0].Name != tt.want {
				t.Errorf("restored name = %q, want %q", kept[0].Name, tt.want)
			}
		})
	}
}

func TestApplyHydratesCoordinates(t *testing.T) {
	dc := &DestinationContext{
		Name: "Goa",
		Regions: []Region{{
			ID: "north", Name: "North", Density: "medium",
			Places: []Place{{Name: "baga beach", Priority: "main", Category: "beach"}},
		}},
	}
	NewSanitizer(testPool()).Apply(dc)

	p := dc.Regions[0].Places[0]
	if p.Lat == nil || p.Lon == nil {
		t.Fatal("coordinates not hydrated")
	}
	if *p.Lat != 15.5524 || *p.Lon != 73.7517 {
		t.Errorf("coords = %v,%v", *p.Lat, *p.Lon)
	}
}

func TestApplyKeepsOracleCoordinates(t *testing.T) {
	lat, lon := 1.0, 2.0
	dc := &DestinationContext{
		Name: "Goa",
		Regions: []Region{{
			ID: "r", Name: "R", Density: "low",
			Places: []Place{{Name: "Baga Beach", Priority: "main", Category: "beach", Lat: &lat, Lon: &lon}},
		}},
	}
	NewSanitizer(testPool()).Apply(dc)
	if *dc.Regions[0].Places[0].Lat != 1.0 {
		t.Error("existing coordinates overwritten")
	}
}

func TestFixCategory(t *testing.T) {
	tests := []struct {
		in      Place
		wantCat string
		wantSub string
	}{
		{Place{Category: "beach"}, "beach", ""},
		{Place{Category: "Beach "}, "beach", ""},
		{Place{Category: ""}, "other", ""},
		{Place{Category: "pub"}, "nightlife", "pub"},
		{Place{Category: "church"}, "temple", "church"},
		{Place{Category: "castle"}, "fort", "castle"},
		{Place{Category: "scenic_spot"}, "attraction", "scenic_spot"},
		{Place{Category: "pub", Subcategory: "irish"}, "nightlife", "irish"},
	}
	for _, tt := range tests {
		p := tt.in
		fixCategory(&p)
		if p.Category != tt.wantCat || p.Subcategory != tt.wantSub {
			t.Errorf("fixCategory(%q/%q) = %q/%q, want %q/%q",
				tt.in.Category, tt.in.Subcategory, p.Category, p.Subcategory, tt.wantCat, tt.wantSub)
		}
	}
}

func TestFixMealType(t *testing.T) {
	tests := []struct {
		name string
		in   Place
		want string
	}{
		{"non-food cleared", Place{Category: "fort", MealType: "lunch"}, ""},
		{"explicit kept", Place{Category: "restaurant", MealType: "brunch"}, "brunch"},
		{"cafe", Place{Category: "cafe"}, "cafe"},
		{"nightlife", Place{Category: "nightlife"}, "bar"},
		{"morning restaurant", Place{Category: "restaurant", BestTime: "morning"}, "breakfast"},
		{"evening restaurant", Place{Category: "restaurant", BestTime: "evening"}, "dinner"},
		{"default lunch", Place{Category: "restaurant", BestTime: "anytime"}, "lunch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			fixMealType(&p)
			if p.MealType != tt.want {
				t.Errorf("meal_type = %q, want %q", p.MealType, tt.want)
			}
		})
	}
}

func TestCleanSpecialty(t *testing.T) {
	p := Place{Specialty: []string{"seafood", "wikidata", "addr:street", "goan thali", "opening_hours", ""}}
	cleanSpecialty(&p)
	want := []string{"seafood", "goan thali"}
	if !reflect.DeepEqual(p.Specialty, want) {
		t.Errorf("specialty = %v, want %v", p.Specialty, want)
	}

	p = Place{}
	cleanSpecialty(&p)
	if p.Specialty == nil || len(p.Specialty) != 0 {
		t.Errorf("nil specialty not normalized to empty slice: %v", p.Specialty)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"chapora fort", "chapora fort", 1.0, 1.0},
		{"chapora fort", "chapora fortt", fuzzyThreshold, 1.0},
		{"baga beach", "palolem beach", 0, fuzzyThreshold},
		{"", "", 1.0, 1.0},
	}
	for _, tt := range tests {
		got := similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("similarity(%q, %q) = %.3f, want within [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}
