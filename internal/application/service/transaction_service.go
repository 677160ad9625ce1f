package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/internal/domain/repository"
	infraRepo "github.com/poscore/transaction-api/internal/infrastructure/repository"
	"github.com/poscore/transaction-api/pkg/apperror"
	"github.com/poscore/transaction-api/pkg/pagination"
	"github.com/poscore/transaction-api/pkg/receipt"
)

// TransactionService serves the read side of the durable transaction store and
// the void/return operations that reverse a completed transaction.
type TransactionService struct {
	txRepo      repository.TransactionRepository
	statusRepo  repository.TransactionStatusRepository
	counterRepo repository.CounterRepository
	publisher   TransactionPublisher
	receipts    *receipt.Builder
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	txRepo repository.TransactionRepository,
	statusRepo repository.TransactionStatusRepository,
	counterRepo repository.CounterRepository,
	publisher TransactionPublisher,
	receipts *receipt.Builder,
) *TransactionService {
	return &TransactionService{
		txRepo:      txRepo,
		statusRepo:  statusRepo,
		counterRepo: counterRepo,
		publisher:   publisher,
		receipts:    receipts,
	}
}

// GetTransaction retrieves one transaction with its void/refund status
func (s *TransactionService) GetTransaction(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64) (*entity.Transaction, *entity.TransactionStatus, error) {
	tx, err := s.txRepo.GetByNumber(ctx, storeCode, terminalID, transactionNo)
	if err != nil {
		return nil, nil, err
	}
	if tx == nil {
		return nil, nil, apperror.NewNotFoundError("Transaction")
	}
	status, err := s.statusRepo.Get(ctx, storeCode, terminalID, transactionNo)
	if err != nil {
		return nil, nil, err
	}
	return tx, status, nil
}

// ListTransactions lists transactions matching the filter
func (s *TransactionService) ListTransactions(ctx context.Context, params *repository.TransactionFilterParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	transactions, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(
		transactions,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total),
	), nil
}

// ReverseInput identifies the transaction being voided or returned
type ReverseInput struct {
	StoreCode     string
	TerminalID    uuid.UUID
	TransactionNo int64
	StaffID       string
}

// VoidTransaction reverses a transaction on the same business day. At most one
// void per transaction; a voided transaction cannot also be refunded.
func (s *TransactionService) VoidTransaction(ctx context.Context, input *ReverseInput) (*entity.Transaction, error) {
	return s.reverse(ctx, input, enum.TransactionTypeVoid)
}

// ReturnTransaction reverses a transaction after the fact. Same exclusivity
// rules as void.
func (s *TransactionService) ReturnTransaction(ctx context.Context, input *ReverseInput) (*entity.Transaction, error) {
	return s.reverse(ctx, input, enum.TransactionTypeReturn)
}

func (s *TransactionService) reverse(ctx context.Context, input *ReverseInput, txType enum.TransactionType) (*entity.Transaction, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	original, err := s.txRepo.GetByNumber(ctx, input.StoreCode, input.TerminalID, input.TransactionNo)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	if original.Type != enum.TransactionTypeSale {
		return nil, apperror.NewConflictError("Only sale transactions can be reversed")
	}

	if err := s.statusRepo.EnsureExists(ctx, &entity.TransactionStatus{
		TenantID:      tenantID,
		StoreCode:     input.StoreCode,
		TerminalID:    input.TerminalID,
		TransactionNo: input.TransactionNo,
	}); err != nil {
		return nil, err
	}

	// The counter number is allocated before the conditional flip because the
	// status row stores it. A lost race burns the number; counters only move
	// forward.
	counterNo, err := s.counterRepo.Next(ctx, input.TerminalID, entity.CounterTransactionNo)
	if err != nil {
		return nil, err
	}

	var won bool
	if txType == enum.TransactionTypeVoid {
		won, err = s.statusRepo.MarkVoided(ctx, input.StoreCode, input.TerminalID, input.TransactionNo, input.StaffID, counterNo)
	} else {
		won, err = s.statusRepo.MarkRefunded(ctx, input.StoreCode, input.TerminalID, input.TransactionNo, input.StaffID, counterNo)
	}
	if err != nil {
		return nil, err
	}
	if !won {
		status, serr := s.statusRepo.Get(ctx, input.StoreCode, input.TerminalID, input.TransactionNo)
		if serr != nil {
			return nil, serr
		}
		if status != nil && status.IsVoided {
			return nil, apperror.ErrAlreadyVoided
		}
		if status != nil && status.IsRefunded {
			return nil, apperror.ErrAlreadyRefunded
		}
		return nil, apperror.NewConflictError("Transaction is already being reversed")
	}

	receiptNo, err := s.counterRepo.Next(ctx, input.TerminalID, entity.CounterReceiptNo)
	if err != nil {
		return nil, err
	}

	cart, err := cartFromTransaction(original, input.StaffID)
	if err != nil {
		return nil, err
	}
	refNo := original.TransactionNo
	counterTx, err := buildTransaction(cart, txType, counterNo, receiptNo, &refNo, s.receipts)
	if err != nil {
		return nil, err
	}
	if err := s.txRepo.Create(ctx, counterTx); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishTransaction(ctx, counterTx); err != nil {
		log.Printf("transaction %d: publish failed, leaving to republish sweep: %v", counterTx.TransactionNo, err)
	}

	return counterTx, nil
}

// cartFromTransaction rebuilds a cart view of a stored transaction so the
// counter-transaction reuses the same amounts, lines and receipt formatting.
func cartFromTransaction(tx *entity.Transaction, staffID string) (*entity.Cart, error) {
	cart := &entity.Cart{
		ID:             uuid.New(),
		TenantID:       tx.TenantID,
		StoreCode:      tx.StoreCode,
		TerminalID:     tx.TerminalID,
		StaffID:        staffID,
		BusinessDate:   tx.BusinessDate,
		SubtotalAmount: tx.SubtotalAmount,
		DiscountAmount: tx.DiscountAmount,
		TaxAmount:      tx.TaxAmount,
		TotalAmount:    tx.TotalAmount,
		DepositAmount:  tx.DepositAmount,
		ChangeAmount:   tx.ChangeAmount,
	}
	if len(tx.Items) > 0 {
		if err := json.Unmarshal(tx.Items, &cart.Items); err != nil {
			return nil, err
		}
	}
	if len(tx.Payments) > 0 {
		if err := json.Unmarshal(tx.Payments, &cart.Payments); err != nil {
			return nil, err
		}
	}
	if len(tx.Taxes) > 0 {
		if err := json.Unmarshal(tx.Taxes, &cart.Taxes); err != nil {
			return nil, err
		}
	}
	return cart, nil
}
