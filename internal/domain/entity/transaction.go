package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"gorm.io/datatypes"
)

// Transaction is the immutable durable record of a completed cart. It is
// created exactly once at completion (or as a void/return counter-transaction)
// and never mutated afterwards; void/refund bookkeeping lives in
// TransactionStatus.
type Transaction struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"tenant_id"`
	StoreCode     string               `gorm:"size:50;not null;uniqueIndex:idx_tx_number" json:"store_code"`
	TerminalID    uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_tx_number" json:"terminal_id"`
	TransactionNo int64                `gorm:"not null;uniqueIndex:idx_tx_number" json:"transaction_no"`
	ReceiptNo     int64                `gorm:"not null" json:"receipt_no"`
	CartID        uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex" json:"cart_id"`
	Type          enum.TransactionType `gorm:"size:20;not null;default:'sale'" json:"type"`
	// RefTransactionNo links a void/return back to the transaction it reverses
	RefTransactionNo *int64 `gorm:"index" json:"ref_transaction_no,omitempty"`

	BusinessDate string `gorm:"size:10;not null;index" json:"business_date"`
	StaffID      string `gorm:"size:100" json:"staff_id"`

	SubtotalAmount float64 `gorm:"not null;default:0" json:"subtotal_amount"`
	DiscountAmount float64 `gorm:"not null;default:0" json:"discount_amount"`
	TaxAmount      float64 `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount    float64 `gorm:"not null;default:0" json:"total_amount"`
	DepositAmount  float64 `gorm:"not null;default:0" json:"deposit_amount"`
	ChangeAmount   float64 `gorm:"not null;default:0" json:"change_amount"`

	Items    datatypes.JSON `gorm:"type:jsonb" json:"items"`
	Payments datatypes.JSON `gorm:"type:jsonb" json:"payments"`
	Taxes    datatypes.JSON `gorm:"type:jsonb" json:"taxes"`

	ReceiptText string `gorm:"type:text" json:"receipt_text"`
	JournalText string `gorm:"type:text" json:"journal_text"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionStatus tracks whether a transaction has since been voided or
// refunded. It is created lazily on the first void/return and updated in
// place afterwards. A transaction can be voided at most once and refunded at
// most once, and the two are mutually exclusive.
type TransactionStatus struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tx_status" json:"tenant_id"`
	StoreCode     string    `gorm:"size:50;not null;uniqueIndex:idx_tx_status" json:"store_code"`
	TerminalID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tx_status" json:"terminal_id"`
	TransactionNo int64     `gorm:"not null;uniqueIndex:idx_tx_status" json:"transaction_no"`

	IsVoided            bool       `gorm:"not null;default:false" json:"is_voided"`
	IsRefunded          bool       `gorm:"not null;default:false" json:"is_refunded"`
	VoidedBy            string     `gorm:"size:100" json:"voided_by,omitempty"`
	VoidedAt            *time.Time `json:"voided_at,omitempty"`
	VoidTransactionNo   *int64     `json:"void_transaction_no,omitempty"`
	RefundedBy          string     `gorm:"size:100" json:"refunded_by,omitempty"`
	RefundedAt          *time.Time `json:"refunded_at,omitempty"`
	RefundTransactionNo *int64     `json:"refund_transaction_no,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the TransactionStatus model
func (TransactionStatus) TableName() string {
	return "transaction_statuses"
}
