package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"kairos/internal/cache"
	"kairos/internal/places"
	"kairos/internal/planner"
)

// Pipeline is the four-stage oracle pipeline the planner package provides.
type Pipeline interface {
	BuildFetchProfile(ctx context.Context, destination string) planner.FetchProfile
	BuildDestinationContext(ctx context.Context, destination string, pool []planner.MetaPlace) (planner.DestinationContext, error)
}

// PlacesClient resolves a destination and fetches its raw places.
type PlacesClient interface {
	Resolve(ctx context.Context, destination string) (places.BoundingBox, error)
	FetchRawPlaces(ctx context.Context, box places.BoundingBox, profile planner.FetchProfile) ([]places.Element, error)
}

// Store is the cache surface the planner needs.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Geocoder backfills coordinates for curated places. Optional.
type Geocoder interface {
	FillCoordinates(ctx context.Context, dc *planner.DestinationContext, destination string)
}

// Planner orchestrates the full destination flow: cached fetch profile,
// raw-place fetch, curation pipeline, coordinate backfill, context cache.
type Planner struct {
	pipeline      Pipeline
	places        PlacesClient
	store         Store
	geocoder      Geocoder
	schemaVersion int
	contextTTL    time.Duration
	log           zerolog.Logger
}

type PlannerDeps struct {
	Pipeline      Pipeline
	Places        PlacesClient
	Store         Store
	Geocoder      Geocoder // nil disables coordinate backfill
	SchemaVersion int
	ContextTTL    time.Duration
	Logger        zerolog.Logger
}

func NewPlanner(deps PlannerDeps) *Planner {
	return &Planner{
		pipeline:      deps.Pipeline,
		places:        deps.Places,
		store:         deps.Store,
		geocoder:      deps.Geocoder,
		schemaVersion: deps.SchemaVersion,
		contextTTL:    deps.ContextTTL,
		log:           deps.Logger,
	}
}

// FetchProfile returns the destination's fetch profile, from cache when
// present. Profiles are cached without expiry: destination identity does
// not change.
func (p *Planner) FetchProfile(ctx context.Context, destination string) (planner.FetchProfile, error) {
	key := cache.ProfileKey(destination)

	var profile planner.FetchProfile
	if p.store != nil {
		hit, err := p.store.Get(ctx, key, &profile)
		if err != nil {
			p.log.Warn().Err(err).Str("destination", destination).Msg("profile cache read failed")
		} else if hit {
			return profile, nil
		}
	}

	profile = p.pipeline.BuildFetchProfile(ctx, destination)
	if p.store != nil {
		if err := p.store.Set(ctx, key, profile, 0); err != nil {
			p.log.Warn().Err(err).Str("destination", destination).Msg("profile cache write failed")
		}
	}
	return profile, nil
}

// BuildPool fetches and normalizes the destination's raw places using its
// fetch profile.
func (p *Planner) BuildPool(ctx context.Context, destination string) ([]planner.MetaPlace, error) {
	profile, err := p.FetchProfile(ctx, destination)
	if err != nil {
		return nil, err
	}

	box, err := p.places.Resolve(ctx, destination)
	if err != nil {
		return nil, err
	}

	elements, err := p.places.FetchRawPlaces(ctx, box, profile)
	if err != nil {
		return nil, fmt.Errorf("fetch places for %q: %w", destination, err)
	}

	pool := places.ApplyDiversity(places.Normalize(elements))
	p.log.Info().
		Str("destination", destination).
		Int("raw", len(elements)).
		Int("pool", len(pool)).
		Msg("metadata pool built")
	return pool, nil
}

// Plan runs the whole flow for a destination and returns the curated,
// geocoded context. Results are cached for the configured TTL.
func (p *Planner) Plan(ctx context.Context, destination string) (planner.DestinationContext, error) {
	key := cache.ContextKey(destination, p.schemaVersion)

	var dc planner.DestinationContext
	if p.store != nil {
		hit, err := p.store.Get(ctx, key, &dc)
		if err != nil {
			p.log.Warn().Err(err).Str("destination", destination).Msg("context cache read failed")
		} else if hit {
			return dc, nil
		}
	}

	pool, err := p.BuildPool(ctx, destination)
	if err != nil {
		return planner.DestinationContext{}, err
	}

	dc, err = p.pipeline.BuildDestinationContext(ctx, destination, pool)
	if err != nil {
		return planner.DestinationContext{}, err
	}

	if p.geocoder != nil {
		p.geocoder.FillCoordinates(ctx, &dc, destination)
	}

	if p.store != nil {
		if err := p.store.Set(ctx, key, dc, p.contextTTL); err != nil {
			p.log.Warn().Err(err).Str("destination", destination).Msg("context cache write failed")
		}
	}
	return dc, nil
}
