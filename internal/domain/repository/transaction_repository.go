package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/pkg/pagination"
)

// TransactionRepository defines the interface for the durable transaction store
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByCartID(ctx context.Context, cartID uuid.UUID) (*entity.Transaction, error)
	GetByNumber(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64) (*entity.Transaction, error)
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
}

// TransactionFilterParams contains filtering parameters for transaction queries
type TransactionFilterParams struct {
	Pagination   *pagination.PaginationParams
	StoreCode    string
	TerminalID   *uuid.UUID
	BusinessDate string
	StartDate    *time.Time
	EndDate      *time.Time
}

// TransactionStatusRepository tracks void/refund state per transaction.
// MarkVoided and MarkRefunded are conditional updates: they succeed only while
// the transaction has been neither voided nor refunded, which is what enforces
// the at-most-once and mutual-exclusion invariants under concurrency.
type TransactionStatusRepository interface {
	Get(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64) (*entity.TransactionStatus, error)
	// EnsureExists creates the status row lazily on first void/return
	EnsureExists(ctx context.Context, status *entity.TransactionStatus) error
	MarkVoided(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64, by string, counterNo int64) (bool, error)
	MarkRefunded(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64, by string, counterNo int64) (bool, error)
}
