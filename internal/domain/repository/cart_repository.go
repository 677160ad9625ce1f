package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
)

// ErrVersionConflict is returned when a replace-if-unchanged write loses the
// race; callers reload the cart and retry a bounded number of times.
var ErrVersionConflict = errors.New("cart version conflict")

// CartRepository defines the interface for cart persistence. The primary path
// is the cache tier; implementations fall back to the durable store when the
// cache is unavailable.
type CartRepository interface {
	Create(ctx context.Context, cart *entity.Cart) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Cart, error)
	// Update replaces the stored snapshot only if the stored version still
	// matches cart.Version, then increments it. Returns ErrVersionConflict
	// when another writer got there first.
	Update(ctx context.Context, cart *entity.Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}
