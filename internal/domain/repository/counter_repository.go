package repository

import (
	"context"

	"github.com/google/uuid"
)

// CounterRepository issues monotonically increasing per-terminal sequence
// numbers. Next must be a single atomic database operation, not an in-process
// lock: several stateless instances may serve the same terminal.
type CounterRepository interface {
	// Next atomically increments the named counter and returns the new value.
	// A missing counter row is a not-found error and is fatal for the
	// enclosing operation.
	Next(ctx context.Context, terminalID uuid.UUID, name string) (int64, error)
	// Seed creates the counter rows for a newly registered terminal
	Seed(ctx context.Context, terminalID uuid.UUID, names []string) error
	// Current reads the counter value without incrementing it
	Current(ctx context.Context, terminalID uuid.UUID, name string) (int64, error)
}
