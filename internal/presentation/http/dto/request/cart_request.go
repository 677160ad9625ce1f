package request

// CreateCartRequest is the body for opening a cart
type CreateCartRequest struct {
	BusinessDate string `json:"business_date" binding:"required"`
}

// AddItemRequest is the body for adding a line item
type AddItemRequest struct {
	ItemCode  string   `json:"item_code" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required,gt=0"`
	UnitPrice *float64 `json:"unit_price"`
}

// UpdateItemRequest is the body for changing a line item
type UpdateItemRequest struct {
	Quantity  *int     `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

// AddDiscountRequest is the body for applying a discount. LineNo targets one
// line; omitting it applies the discount to the whole cart.
type AddDiscountRequest struct {
	LineNo      *int    `json:"line_no"`
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

// AddPaymentRequest is the body for applying a payment
type AddPaymentRequest struct {
	MethodCode string         `json:"method_code" binding:"required"`
	Amount     float64        `json:"amount" binding:"required,gt=0"`
	Deposit    float64        `json:"deposit"`
	Detail     map[string]any `json:"detail"`
}
