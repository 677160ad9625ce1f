package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	domainRepo "github.com/poscore/transaction-api/internal/domain/repository"
	"gorm.io/gorm"
)

type terminalRepository struct {
	db *gorm.DB
}

// NewTerminalRepository creates a new terminal repository
func NewTerminalRepository(db *gorm.DB) domainRepo.TerminalRepository {
	return &terminalRepository{db: db}
}

func (r *terminalRepository) Create(ctx context.Context, terminal *entity.Terminal) error {
	return r.db.WithContext(ctx).Create(terminal).Error
}

func (r *terminalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Terminal, error) {
	var terminal entity.Terminal
	err := r.db.WithContext(ctx).Scopes(TenantScope(ctx)).First(&terminal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (r *terminalRepository) FindForAuth(ctx context.Context, id uuid.UUID) (*entity.Terminal, error) {
	var terminal entity.Terminal
	err := r.db.WithContext(ctx).First(&terminal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (r *terminalRepository) List(ctx context.Context, storeCode string) ([]entity.Terminal, error) {
	var terminals []entity.Terminal
	query := r.db.WithContext(ctx).Scopes(TenantScope(ctx))
	if storeCode != "" {
		query = query.Where("store_code = ?", storeCode)
	}
	err := query.Order("store_code, terminal_no").Find(&terminals).Error
	return terminals, err
}

func (r *terminalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Delete(&entity.Terminal{}, "id = ?", id).Error
}
