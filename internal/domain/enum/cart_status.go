package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CartStatus represents the lifecycle state of a cart
type CartStatus int

const (
	CartStatusInitial      CartStatus = 0
	CartStatusIdle         CartStatus = 1
	CartStatusEnteringItem CartStatus = 2
	CartStatusPaying       CartStatus = 3
	CartStatusCompleted    CartStatus = 4
	CartStatusCancelled    CartStatus = 5
)

func (s CartStatus) String() string {
	names := [...]string{"Initial", "Idle", "EnteringItem", "Paying", "Completed", "Cancelled"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Initial"
	}
	return names[s]
}

// IsTerminal reports whether no further operations may transition the cart
func (s CartStatus) IsTerminal() bool {
	return s == CartStatusCompleted || s == CartStatusCancelled
}

// allowedEvents is the capability table: which events each state accepts.
// Checks happen before any mutation, so a rejected event leaves the cart untouched.
var allowedEvents = map[CartStatus]map[CartEvent]bool{
	CartStatusInitial: {
		EventRead: true,
	},
	CartStatusIdle: {
		EventAddItem: true,
		EventCancel:  true,
		EventRead:    true,
	},
	CartStatusEnteringItem: {
		EventAddItem:     true,
		EventUpdateItem:  true,
		EventRemoveItem:  true,
		EventAddDiscount: true,
		EventSubtotal:    true,
		EventCancel:      true,
		EventRead:        true,
	},
	CartStatusPaying: {
		EventAddPayment:    true,
		EventCancelPayment: true,
		EventResume:        true,
		EventBill:          true,
		EventCancel:        true,
		EventRead:          true,
	},
	CartStatusCompleted: {
		EventRead: true,
	},
	CartStatusCancelled: {
		EventRead: true,
	},
}

// Allows reports whether the given event is legal in this state
func (s CartStatus) Allows(e CartEvent) bool {
	events, ok := allowedEvents[s]
	if !ok {
		return false
	}
	return events[e]
}

func (s CartStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CartStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CartStatus(i)
		return nil
	}
	switch str {
	case "Initial":
		*s = CartStatusInitial
	case "Idle":
		*s = CartStatusIdle
	case "EnteringItem":
		*s = CartStatusEnteringItem
	case "Paying":
		*s = CartStatusPaying
	case "Completed":
		*s = CartStatusCompleted
	case "Cancelled":
		*s = CartStatusCancelled
	}
	return nil
}

func (s CartStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CartStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CartStatusInitial
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CartStatus(v)
	case int:
		*s = CartStatus(v)
	}
	return nil
}
