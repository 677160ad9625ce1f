package request

// ReverseTransactionRequest is the body for voiding or returning a transaction
type ReverseTransactionRequest struct {
	StaffID string `json:"staff_id"`
}

// UpdateDeliveryRequest is the acknowledgment callback body from a subscriber
type UpdateDeliveryRequest struct {
	Service string `json:"service" binding:"required"`
	State   string `json:"state" binding:"required"`
}
