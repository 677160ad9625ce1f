package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	domainRepo "github.com/poscore/transaction-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionStatusRepository struct {
	db *gorm.DB
}

// NewTransactionStatusRepository creates a new transaction status repository
func NewTransactionStatusRepository(db *gorm.DB) domainRepo.TransactionStatusRepository {
	return &transactionStatusRepository{db: db}
}

func (r *transactionStatusRepository) Get(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64) (*entity.TransactionStatus, error) {
	var status entity.TransactionStatus
	err := r.db.WithContext(ctx).Scopes(TenantScope(ctx)).
		First(&status, "store_code = ? AND terminal_id = ? AND transaction_no = ?", storeCode, terminalID, transactionNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *transactionStatusRepository) EnsureExists(ctx context.Context, status *entity.TransactionStatus) error {
	if status.ID == uuid.Nil {
		status.ID = uuid.New()
	}
	// Lazy creation: a concurrent first void/return may race here, so the
	// conflict on the composite unique index is simply ignored.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(status).Error
}

// MarkVoided flips the voided flag only while the transaction is still
// untouched. RowsAffected tells the caller whether it won the race; this is
// what makes void-at-most-once hold across process instances.
func (r *transactionStatusRepository) MarkVoided(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64, by string, counterNo int64) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&entity.TransactionStatus{}).
		Scopes(TenantScope(ctx)).
		Where("store_code = ? AND terminal_id = ? AND transaction_no = ?", storeCode, terminalID, transactionNo).
		Where("is_voided = false AND is_refunded = false").
		Updates(map[string]interface{}{
			"is_voided":           true,
			"voided_by":           by,
			"voided_at":           now,
			"void_transaction_no": counterNo,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *transactionStatusRepository) MarkRefunded(ctx context.Context, storeCode string, terminalID uuid.UUID, transactionNo int64, by string, counterNo int64) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&entity.TransactionStatus{}).
		Scopes(TenantScope(ctx)).
		Where("store_code = ? AND terminal_id = ? AND transaction_no = ?", storeCode, terminalID, transactionNo).
		Where("is_voided = false AND is_refunded = false").
		Updates(map[string]interface{}{
			"is_refunded":           true,
			"refunded_by":           by,
			"refunded_at":           now,
			"refund_transaction_no": counterNo,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
