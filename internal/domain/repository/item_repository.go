package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
)

// ItemRepository defines the interface for master-data item lookups
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
	List(ctx context.Context) ([]entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}
