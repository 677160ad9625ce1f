package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"gorm.io/datatypes"
)

// Cart is the in-progress transaction document. It lives in the cache tier as a
// JSON snapshot and is mirrored to the durable store only when the cache path
// is unavailable. Mutations go through the state machine check first.
type Cart struct {
	ID           uuid.UUID       `json:"id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	StoreCode    string          `json:"store_code"`
	TerminalID   uuid.UUID       `json:"terminal_id"`
	StaffID      string          `json:"staff_id"`
	BusinessDate string          `json:"business_date"` // logical trading day, YYYY-MM-DD
	Status       enum.CartStatus `json:"status"`

	Items         []CartItem     `json:"items"`
	Payments      []CartPayment  `json:"payments"`
	CartDiscounts []DiscountLine `json:"cart_discounts"`
	Taxes         []TaxLine      `json:"taxes"`

	SubtotalAmount float64 `json:"subtotal_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
	PaymentAmount  float64 `json:"payment_amount"`
	BalanceAmount  float64 `json:"balance_amount"`
	DepositAmount  float64 `json:"deposit_amount"`
	ChangeAmount   float64 `json:"change_amount"`

	// Master-data snapshot captured at cart-open time, keyed by item code,
	// so item/tax lookups never leave the cart for its whole lifetime.
	ItemSnapshot map[string]ItemSnapshot `json:"item_snapshot"`

	// Version backs the replace-if-unchanged write pattern on both tiers
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem is one line of the cart. Removed lines are soft-cancelled and kept
// for audit; they contribute nothing to the totals.
type CartItem struct {
	LineNo        int            `json:"line_no"`
	ItemCode      string         `json:"item_code"`
	ItemName      string         `json:"item_name"`
	Quantity      int            `json:"quantity"`
	UnitPrice     float64        `json:"unit_price"`
	OriginalPrice *float64       `json:"original_price,omitempty"` // set when the price was overridden
	Discounts     []DiscountLine `json:"discounts,omitempty"`

	TaxRate      float64           `json:"tax_rate"`
	TaxMode      enum.TaxMode      `json:"tax_mode"`
	RoundingMode enum.RoundingMode `json:"rounding_mode"`
	TaxAmount    float64           `json:"tax_amount"`

	Cancelled bool `json:"cancelled"`
}

// Amount returns the line amount after per-line discounts, zero when cancelled
func (i *CartItem) Amount() float64 {
	if i.Cancelled {
		return 0
	}
	amount := i.UnitPrice * float64(i.Quantity)
	for _, d := range i.Discounts {
		amount -= d.Amount
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// CartPayment is one payment applied to the cart
type CartPayment struct {
	SeqNo      int            `json:"seq_no"`
	MethodCode string         `json:"method_code"`
	Amount     float64        `json:"amount"`
	Deposit    float64        `json:"deposit"`
	Change     float64        `json:"change"`
	Detail     map[string]any `json:"detail,omitempty"`
	Cancelled  bool           `json:"cancelled"`
}

// DiscountLine is a discount applied either to the whole cart or to one line
type DiscountLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// TaxLine aggregates tax per (rate, mode) for display and the journal
type TaxLine struct {
	Rate         float64      `json:"rate"`
	Mode         enum.TaxMode `json:"mode"`
	TargetAmount float64      `json:"target_amount"`
	TaxAmount    float64      `json:"tax_amount"`
}

// ItemSnapshot is the master-data view of an item frozen at cart-open time
type ItemSnapshot struct {
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Price        float64           `json:"price"`
	TaxRate      float64           `json:"tax_rate"`
	TaxMode      enum.TaxMode      `json:"tax_mode"`
	RoundingMode enum.RoundingMode `json:"rounding_mode"`
}

// FindItem returns the cart line with the given line number, or nil
func (c *Cart) FindItem(lineNo int) *CartItem {
	for i := range c.Items {
		if c.Items[i].LineNo == lineNo {
			return &c.Items[i]
		}
	}
	return nil
}

// NextLineNo returns the line number for a newly added item
func (c *Cart) NextLineNo() int {
	return len(c.Items) + 1
}

// NextPaymentSeq returns the sequence number for a newly added payment
func (c *Cart) NextPaymentSeq() int {
	return len(c.Payments) + 1
}

// CartRecord is the durable-store row backing the cart fallback path.
// The full cart document is stored as a JSONB snapshot; the version column
// drives the optimistic replace-if-unchanged update.
type CartRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Snapshot  datatypes.JSON `gorm:"type:jsonb;not null" json:"snapshot"`
	Version   int64          `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the table name for the CartRecord model
func (CartRecord) TableName() string {
	return "carts"
}
