package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	domainRepo "github.com/poscore/transaction-api/internal/domain/repository"
	"github.com/poscore/transaction-api/pkg/apperror"
	"gorm.io/gorm"
)

type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new terminal counter repository
func NewCounterRepository(db *gorm.DB) domainRepo.CounterRepository {
	return &counterRepository{db: db}
}

// Next increments and reads the counter in one statement. The database row is
// the unit of atomicity, so concurrent allocations from many process
// instances never hand out the same value.
func (r *counterRepository) Next(ctx context.Context, terminalID uuid.UUID, name string) (int64, error) {
	var value int64
	res := r.db.WithContext(ctx).Raw(
		`UPDATE terminal_counters SET value = value + 1, updated_at = NOW()
		 WHERE terminal_id = ? AND name = ? RETURNING value`,
		terminalID, name,
	).Scan(&value)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, apperror.NewNotFoundError("Terminal counter")
	}
	return value, nil
}

func (r *counterRepository) Seed(ctx context.Context, terminalID uuid.UUID, names []string) error {
	counters := make([]entity.TerminalCounter, 0, len(names))
	for _, name := range names {
		counters = append(counters, entity.TerminalCounter{
			TerminalID: terminalID,
			Name:       name,
			Value:      0,
		})
	}
	return r.db.WithContext(ctx).Create(&counters).Error
}

func (r *counterRepository) Current(ctx context.Context, terminalID uuid.UUID, name string) (int64, error) {
	var counter entity.TerminalCounter
	err := r.db.WithContext(ctx).
		First(&counter, "terminal_id = ? AND name = ?", terminalID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperror.NewNotFoundError("Terminal counter")
	}
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}
