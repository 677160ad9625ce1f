package enum

// CartEvent identifies an operation attempted against a cart
type CartEvent int

const (
	EventAddItem CartEvent = iota
	EventUpdateItem
	EventRemoveItem
	EventAddDiscount
	EventSubtotal
	EventAddPayment
	EventCancelPayment
	EventResume
	EventBill
	EventCancel
	EventRead
)

func (e CartEvent) String() string {
	names := [...]string{
		"AddItem", "UpdateItem", "RemoveItem", "AddDiscount", "Subtotal",
		"AddPayment", "CancelPayment", "Resume", "Bill", "Cancel", "Read",
	}
	if int(e) < 0 || int(e) >= len(names) {
		return "Unknown"
	}
	return names[e]
}
