package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Terminal is a single point-of-sale register within a store
type Terminal struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	StoreCode  string    `gorm:"size:50;not null;uniqueIndex:idx_terminal_no" json:"store_code"`
	TerminalNo int       `gorm:"not null;uniqueIndex:idx_terminal_no" json:"terminal_no"`
	Name       string    `gorm:"size:255" json:"name"`
	// APIKeyHash is the bcrypt hash of the terminal's API key; the plain key
	// is returned once at registration and never stored.
	APIKeyHash string         `gorm:"size:255;not null" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new terminal
func (t *Terminal) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Terminal model
func (Terminal) TableName() string {
	return "terminals"
}

// Counter names drawn from the terminal counter entity
const (
	CounterTransactionNo = "transaction_no"
	CounterReceiptNo     = "receipt_no"
	CounterBusiness      = "business"
)

// TerminalCounter holds one named monotonically increasing counter for a
// terminal. A row per counter name is what makes the allocation a single
// atomic UPDATE .. RETURNING statement; the value is never decremented.
type TerminalCounter struct {
	TerminalID uuid.UUID `gorm:"type:uuid;primaryKey" json:"terminal_id"`
	Name       string    `gorm:"size:50;primaryKey" json:"name"`
	Value      int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for the TerminalCounter model
func (TerminalCounter) TableName() string {
	return "terminal_counters"
}
