package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Item is the minimal master-data view the transaction engine needs: a code,
// a price and the tax rule to apply. The full catalog is owned by the master
// data collaborator; items here are snapshotted into the cart at open time.
type Item struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TenantID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_item_code" json:"tenant_id"`
	Code         string            `gorm:"size:100;not null;uniqueIndex:idx_item_code" json:"code"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Price        float64           `gorm:"not null;default:0" json:"price"`
	TaxRate      float64           `gorm:"not null;default:0" json:"tax_rate"`
	TaxMode      enum.TaxMode      `gorm:"default:0" json:"tax_mode"`
	RoundingMode enum.RoundingMode `gorm:"default:0" json:"rounding_mode"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Item model
func (Item) TableName() string {
	return "items"
}

// Snapshot converts the item into its cart-resident form
func (i *Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		Code:         i.Code,
		Name:         i.Name,
		Price:        i.Price,
		TaxRate:      i.TaxRate,
		TaxMode:      i.TaxMode,
		RoundingMode: i.RoundingMode,
	}
}
