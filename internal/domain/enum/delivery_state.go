package enum

// DeliveryState represents a subscriber's acknowledgment state for a published event
type DeliveryState string

const (
	DeliveryStatePending  DeliveryState = "pending"
	DeliveryStateReceived DeliveryState = "received"
	DeliveryStateFailed   DeliveryState = "failed"
)

// Valid reports whether s is a known delivery state
func (s DeliveryState) Valid() bool {
	switch s {
	case DeliveryStatePending, DeliveryStateReceived, DeliveryStateFailed:
		return true
	}
	return false
}

// TransactionType distinguishes a sale from its void/return counter-transactions
type TransactionType string

const (
	TransactionTypeSale   TransactionType = "sale"
	TransactionTypeVoid   TransactionType = "void"
	TransactionTypeReturn TransactionType = "return"
)
