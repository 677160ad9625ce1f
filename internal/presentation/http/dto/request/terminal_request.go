package request

// RegisterTerminalRequest is the body for registering a terminal. Registration
// runs before any terminal credential exists, so the tenant comes from the
// provisioning request itself.
type RegisterTerminalRequest struct {
	TenantID   string `json:"tenant_id" binding:"required,uuid"`
	StoreCode  string `json:"store_code" binding:"required"`
	TerminalNo int    `json:"terminal_no" binding:"required,gt=0"`
	Name       string `json:"name"`
}

// CreateItemRequest is the body for creating an item
type CreateItemRequest struct {
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Price        float64 `json:"price" binding:"gte=0"`
	TaxRate      float64 `json:"tax_rate" binding:"gte=0"`
	TaxMode      int     `json:"tax_mode"`
	RoundingMode int     `json:"rounding_mode"`
}

// UpdateItemMasterRequest is the body for updating an item
type UpdateItemMasterRequest struct {
	Name         *string  `json:"name"`
	Price        *float64 `json:"price"`
	TaxRate      *float64 `json:"tax_rate"`
	TaxMode      *int     `json:"tax_mode"`
	RoundingMode *int     `json:"rounding_mode"`
}
