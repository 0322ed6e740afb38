package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kairos/internal/places"
	"kairos/internal/planner"
)

type stubPipeline struct {
	profileCalls int
	contextCalls int
	dc           planner.DestinationContext
	dcErr        error
}

func (s *stubPipeline) BuildFetchProfile(_ context.Context, _ string) planner.FetchProfile {
	s.profileCalls++
	return planner.DefaultFetchProfile()
}

func (s *stubPipeline) BuildDestinationContext(_ context.Context, _ string, _ []planner.MetaPlace) (planner.DestinationContext, error) {
	s.contextCalls++
	return s.dc, s.dcErr
}

type stubPlaces struct {
	resolveCalls int
}

func (s *stubPlaces) Resolve(_ context.Context, _ string) (places.BoundingBox, error) {
	s.resolveCalls++
	return places.BoundingBox{South: 15, West: 73.6, North: 15.8, East: 74.3}, nil
}

func (s *stubPlaces) FetchRawPlaces(_ context.Context, _ places.BoundingBox, _ planner.FetchProfile) ([]places.Element, error) {
	return []places.Element{
		{ID: 1, Type: "node", Lat: 15.55, Lon: 73.75, Tags: map[string]string{"name": "Baga Beach", "natural": "beach"}},
	}, nil
}

// memStore is an in-memory Store, JSON round-tripped like the Redis adapter.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memStore) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

type countingGeocoder struct{ calls int }

func (g *countingGeocoder) FillCoordinates(_ context.Context, _ *planner.DestinationContext, _ string) {
	g.calls++
}

func testContext() planner.DestinationContext {
	return planner.DestinationContext{
		Name: "Goa",
		Regions: []planner.Region{{
			ID: "north", Name: "North Goa", Density: "medium",
			Places: []planner.Place{{Name: "Baga Beach", Priority: "main", Category: "beach"}},
		}},
		TravelProfile: planner.TravelProfile{Spread: "compact", MinDays: 2, IdealDays: 3},
	}
}

func newTestPlanner(pipe *stubPipeline, store Store, geo Geocoder) (*Planner, *stubPlaces) {
	pl := &stubPlaces{}
	return NewPlanner(PlannerDeps{
		Pipeline:      pipe,
		Places:        pl,
		Store:         store,
		Geocoder:      geo,
		SchemaVersion: 2,
		ContextTTL:    7 * 24 * time.Hour,
		Logger:        zerolog.Nop(),
	}), pl
}

func TestFetchProfileCachedPermanently(t *testing.T) {
	pipe := &stubPipeline{}
	p, _ := newTestPlanner(pipe, newMemStore(), nil)
	ctx := context.Background()

	first, err := p.FetchProfile(ctx, "Goa")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	second, err := p.FetchProfile(ctx, "Goa")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if pipe.profileCalls != 1 {
		t.Errorf("pipeline called %d times, want 1", pipe.profileCalls)
	}
	if first.DestinationType != second.DestinationType {
		t.Error("cached profile differs")
	}
}

func TestPlanEndToEndAndCached(t *testing.T) {
	pipe := &stubPipeline{dc: testContext()}
	geo := &countingGeocoder{}
	p, pl := newTestPlanner(pipe, newMemStore(), geo)
	ctx := context.Background()

	dc, err := p.Plan(ctx, "Goa")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if dc.Name != "Goa" || pipe.contextCalls != 1 || pl.resolveCalls != 1 || geo.calls != 1 {
		t.Fatalf("first run: dc=%q pipeline=%d resolve=%d geocode=%d",
			dc.Name, pipe.contextCalls, pl.resolveCalls, geo.calls)
	}

	if _, err := p.Plan(ctx, "Goa"); err != nil {
		t.Fatalf("Plan (cached): %v", err)
	}
	if pipe.contextCalls != 1 || pl.resolveCalls != 1 {
		t.Errorf("cached run hit the pipeline again: pipeline=%d resolve=%d",
			pipe.contextCalls, pl.resolveCalls)
	}
}

func TestPlanPropagatesPipelineFailure(t *testing.T) {
	pipe := &stubPipeline{dcErr: context.DeadlineExceeded}
	p, _ := newTestPlanner(pipe, newMemStore(), nil)

	if _, err := p.Plan(context.Background(), "Goa"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPlanWorksWithoutCacheAndGeocoder(t *testing.T) {
	pipe := &stubPipeline{dc: testContext()}
	p, _ := newTestPlanner(pipe, nil, nil)

	dc, err := p.Plan(context.Background(), "Goa")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if dc.Name != "Goa" {
		t.Errorf("dc = %+v", dc)
	}
}
