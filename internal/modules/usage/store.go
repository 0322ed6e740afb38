package usage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles oracle_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Increment bumps the call counter (and failure counter when failed) for
// the destination/stage pair, creating the row on first use.
func (s *Store) Increment(ctx context.Context, destination, stage string, failed bool) error {
	failures := 0
	if failed {
		failures = 1
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO oracle_usage (destination, stage, calls, failures, last_called_at)
		VALUES ($1, $2, 1, $3, NOW())
		ON CONFLICT (destination, stage) DO UPDATE SET
			calls = oracle_usage.calls + 1,
			failures = oracle_usage.failures + $3,
			last_called_at = NOW()
	`, destination, stage, failures)
	return err
}

// ByDestination returns the per-stage records for one destination.
func (s *Store) ByDestination(ctx context.Context, destination string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT destination, stage, calls, failures, last_called_at
		FROM oracle_usage
		WHERE destination = $1
		ORDER BY stage
	`, destination)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Destination, &r.Stage, &r.Calls, &r.Failures, &r.LastCalledAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
