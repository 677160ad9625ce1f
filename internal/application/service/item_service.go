package service

import (
	"context"

	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/internal/domain/repository"
	infraRepo "github.com/poscore/transaction-api/internal/infrastructure/repository"
	"github.com/poscore/transaction-api/pkg/apperror"
)

// ItemService maintains the engine's slice of item master data
type ItemService struct {
	itemRepo repository.ItemRepository
}

// NewItemService creates a new item service
func NewItemService(itemRepo repository.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

// CreateItemInput represents the create item input
type CreateItemInput struct {
	Code         string
	Name         string
	Price        float64
	TaxRate      float64
	TaxMode      enum.TaxMode
	RoundingMode enum.RoundingMode
}

// CreateItem creates a new item
func (s *ItemService) CreateItem(ctx context.Context, input *CreateItemInput) (*entity.Item, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	existing, err := s.itemRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Item code already exists")
	}

	item := &entity.Item{
		TenantID:     tenantID,
		Code:         input.Code,
		Name:         input.Name,
		Price:        input.Price,
		TaxRate:      input.TaxRate,
		TaxMode:      input.TaxMode,
		RoundingMode: input.RoundingMode,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem retrieves an item by code
func (s *ItemService) GetItem(ctx context.Context, code string) (*entity.Item, error) {
	item, err := s.itemRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Item")
	}
	return item, nil
}

// ListItems lists all items for the tenant
func (s *ItemService) ListItems(ctx context.Context) ([]entity.Item, error) {
	return s.itemRepo.List(ctx)
}

// UpdateItemMasterInput represents the update item input
type UpdateItemMasterInput struct {
	Name         *string
	Price        *float64
	TaxRate      *float64
	TaxMode      *enum.TaxMode
	RoundingMode *enum.RoundingMode
}

// UpdateItem updates an item's master data. Open carts keep their snapshot;
// the change applies to carts opened afterwards.
func (s *ItemService) UpdateItem(ctx context.Context, code string, input *UpdateItemMasterInput) (*entity.Item, error) {
	item, err := s.GetItem(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	if input.TaxRate != nil {
		item.TaxRate = *input.TaxRate
	}
	if input.TaxMode != nil {
		item.TaxMode = *input.TaxMode
	}
	if input.RoundingMode != nil {
		item.RoundingMode = *input.RoundingMode
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item
func (s *ItemService) DeleteItem(ctx context.Context, code string) error {
	item, err := s.GetItem(ctx, code)
	if err != nil {
		return err
	}
	return s.itemRepo.Delete(ctx, item.ID)
}
