package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
)

// TerminalRepository defines the interface for terminal data operations
type TerminalRepository interface {
	Create(ctx context.Context, terminal *entity.Terminal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Terminal, error)
	// FindForAuth looks a terminal up before the tenant context exists; the
	// terminal row itself establishes the tenant for the request
	FindForAuth(ctx context.Context, id uuid.UUID) (*entity.Terminal, error)
	List(ctx context.Context, storeCode string) ([]entity.Terminal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
