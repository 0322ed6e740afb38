package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"kairos/internal/ai"
	"kairos/internal/audit"
	"kairos/internal/observability"
)

// failurePolicy names what a stage does when the oracle round-trip fails.
// The asymmetry is deliberate: the fetch profile is speculative (a bad one
// degrades quality, not correctness) while the later stages operate on data
// already fetched at cost, where guessing would silently corrupt the plan.
type failurePolicy int

const (
	policyPropagate failurePolicy = iota
	policyFallback
)

const (
	StageFetchProfile = "stage0_fetch_profile"
	StageStructure    = "stage1_structure"
	StageCurate       = "stage2_curate"
	StageStrategize   = "stage3_strategize"
)

type stageSpec struct {
	name   string
	prompt string
	policy failurePolicy
}

var (
	specFetchProfile = stageSpec{StageFetchProfile, fetchProfilePrompt, policyFallback}
	specStructure    = stageSpec{StageStructure, structurePrompt, policyPropagate}
	specCurate       = stageSpec{StageCurate, curatePrompt, policyPropagate}
	specStrategize   = stageSpec{StageStrategize, strategizePrompt, policyPropagate}
)

// ErrOracle wraps transport/oracle failures so callers can tell them apart
// from malformed output and schema violations.
var ErrOracle = errors.New("oracle call failed")

// UsageRecorder accounts oracle calls. Recording is best-effort; the
// pipeline ignores its errors.
type UsageRecorder interface {
	RecordCall(ctx context.Context, destination, stage string, failed bool)
}

// Service runs the four-stage pipeline. Stateless across requests: every
// method operates solely on its input and returns a fresh value.
type Service struct {
	oracle ai.Oracle
	schema Schema
	audit  *audit.Sink
	usage  UsageRecorder
	log    zerolog.Logger
}

type Deps struct {
	Audit  *audit.Sink
	Usage  UsageRecorder
	Logger zerolog.Logger
}

func NewService(oracle ai.Oracle, schema Schema, deps Deps) *Service {
	return &Service{
		oracle: oracle,
		schema: schema,
		audit:  deps.Audit,
		usage:  deps.Usage,
		log:    deps.Logger,
	}
}

// invoke runs the shared stage skeleton: oracle call, audit record,
// JSON extraction into out. Validation is per stage, on top.
func (s *Service) invoke(ctx context.Context, spec stageSpec, destination string, payload any, out any) error {
	start := time.Now()
	raw, err := s.oracle.Complete(ctx, spec.prompt, payload)
	observability.ObserveOracle(spec.name, time.Since(start))

	entry := audit.Exchange{
		Stage:       spec.name,
		Destination: destination,
		Prompt:      spec.prompt,
		Response:    raw,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.audit.Record(entry)

	if s.usage != nil {
		s.usage.RecordCall(ctx, destination, spec.name, err != nil)
	}

	if err != nil {
		observability.ObserveStage(spec.name, "oracle_error")
		return fmt.Errorf("%s: %w: %v", spec.name, ErrOracle, err)
	}
	if err := ai.DecodeObject(raw, out); err != nil {
		observability.ObserveStage(spec.name, "malformed")
		return fmt.Errorf("%s: %w", spec.name, err)
	}
	return nil
}

// BuildFetchProfile runs Stage 0. It never fails: any oracle, extraction,
// or schema error is logged and masked by the static default profile.
func (s *Service) BuildFetchProfile(ctx context.Context, destination string) FetchProfile {
	payload := map[string]any{"destination": destination}

	var profile FetchProfile
	err := s.invoke(ctx, specFetchProfile, destination, payload, &profile)
	if err == nil {
		if verr := s.schema.FetchProfile(&profile); verr != nil {
			observability.ObserveStage(StageFetchProfile, "invalid")
			err = verr
		}
	}
	if err != nil {
		s.log.Warn().Err(err).Str("destination", destination).
			Msg("fetch-profile stage failed, substituting default profile")
		observability.ObserveStage(StageFetchProfile, "fallback")
		return DefaultFetchProfile()
	}

	observability.ObserveStage(StageFetchProfile, "ok")
	return profile
}

// StructureRegions runs Stage 1: group raw places into geographic regions.
// Shape-checked by extraction only; errors propagate.
func (s *Service) StructureRegions(ctx context.Context, destination string, pool []MetaPlace) (Structure, error) {
	payload := map[string]any{
		"destination": destination,
		"places":      pool,
	}

	var st Structure
	if err := s.invoke(ctx, specStructure, destination, payload, &st); err != nil {
		return Structure{}, err
	}
	observability.ObserveStage(StageStructure, "ok")
	return st, nil
}

// CurateRegions runs Stage 2: enrich the structured regions with category,
// priority, best_time and the rest, selecting only from the metadata pool.
func (s *Service) CurateRegions(ctx context.Context, st Structure, pool []MetaPlace) (Structure, error) {
	payload := map[string]any{
		"structure":     st,
		"metadata_pool": pool,
	}

	var curated Structure
	if err := s.invoke(ctx, specCurate, st.Name, payload, &curated); err != nil {
		return Structure{}, err
	}
	observability.ObserveStage(StageCurate, "ok")
	return curated, nil
}

// DeriveTravelProfile runs Stage 3 and validates the result, including the
// ideal_days >= min_days cross-field rule.
func (s *Service) DeriveTravelProfile(ctx context.Context, curated Structure) (TravelProfile, error) {
	var tp TravelProfile
	if err := s.invoke(ctx, specStrategize, curated.Name, curated, &tp); err != nil {
		return TravelProfile{}, err
	}
	if err := s.schema.TravelProfile(&tp); err != nil {
		observability.ObserveStage(StageStrategize, "invalid")
		return TravelProfile{}, fmt.Errorf("%s: %w", StageStrategize, err)
	}
	observability.ObserveStage(StageStrategize, "ok")
	return tp, nil
}

// BuildDestinationContext is the combined single-call variant: structure,
// curate and strategize chained, sanitized against the pool, and validated
// as a whole against the destination-context schema.
func (s *Service) BuildDestinationContext(ctx context.Context, destination string, pool []MetaPlace) (DestinationContext, error) {
	st, err := s.StructureRegions(ctx, destination, pool)
	if err != nil {
		return DestinationContext{}, err
	}

	curated, err := s.CurateRegions(ctx, st, pool)
	if err != nil {
		return DestinationContext{}, err
	}

	tp, err := s.DeriveTravelProfile(ctx, curated)
	if err != nil {
		return DestinationContext{}, err
	}

	dc := DestinationContext{
		Name:          curated.Name,
		Regions:       curated.Regions,
		TravelProfile: tp,
	}
	if dc.Name == "" {
		dc.Name = destination
	}

	NewSanitizer(pool).Apply(&dc)

	if err := s.schema.DestinationContext(&dc); err != nil {
		return DestinationContext{}, err
	}

	for _, flag := range append(CheckCuration(Structure{Name: dc.Name, Regions: dc.Regions}), CheckStrategy(dc)...) {
		s.log.Warn().
			Str("destination", destination).
			Str("region", flag.Region).
			Str("rule", flag.Rule).
			Msg(flag.Detail)
	}

	return dc, nil
}
