package usage

import (
	"context"

	"github.com/rs/zerolog"
)

// Service records oracle calls. Accounting is best-effort: a failed write
// is logged and dropped, never surfaced to the pipeline.
type Service struct {
	store *Store
	log   zerolog.Logger
}

// NewService creates a Service backed by the given Store.
func NewService(store *Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// RecordCall accounts one oracle round-trip for the destination/stage pair.
func (s *Service) RecordCall(ctx context.Context, destination, stage string, failed bool) {
	if err := s.store.Increment(ctx, destination, stage, failed); err != nil {
		s.log.Warn().Err(err).
			Str("destination", destination).
			Str("stage", stage).
			Msg("usage accounting write failed")
	}
}

// Report returns the per-stage usage for one destination.
func (s *Service) Report(ctx context.Context, destination string) ([]Record, error) {
	return s.store.ByDestination(ctx, destination)
}
