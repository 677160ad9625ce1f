package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"gorm.io/datatypes"
)

// DeliveryStatus tracks per-subscriber acknowledgment of one published event.
// The republish sweep looks for rows inside the lookback window whose age has
// passed the failure threshold and that still carry a pending entry.
type DeliveryStatus struct {
	EventID  uuid.UUID `gorm:"type:uuid;primary_key" json:"event_id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	PublishedAt     time.Time `gorm:"not null;index" json:"published_at"`
	LastPublishedAt time.Time `gorm:"not null" json:"last_published_at"`
	RepublishCount  int       `gorm:"not null;default:0" json:"republish_count"`

	Payload datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`

	Subscribers SubscriberStates `gorm:"type:jsonb" json:"subscribers"`
	// PendingCount mirrors the pending entries in Subscribers so the sweep
	// query stays a plain indexed comparison instead of a JSONB scan.
	PendingCount int `gorm:"not null;default:0;index" json:"pending_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the DeliveryStatus model
func (DeliveryStatus) TableName() string {
	return "delivery_statuses"
}

// SubscriberDelivery is one subscriber's acknowledgment entry
type SubscriberDelivery struct {
	Service   string             `json:"service"`
	State     enum.DeliveryState `json:"state"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SubscriberStates is the JSONB array of per-subscriber entries
type SubscriberStates []SubscriberDelivery

// Scan implements the sql.Scanner interface for SubscriberStates
func (s *SubscriberStates) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan SubscriberStates: unsupported type")
	}

	return json.Unmarshal(bytes, s)
}

// Value implements the driver.Valuer interface for SubscriberStates
func (s SubscriberStates) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// NewSubscriberStates returns one pending entry per known subscriber service
func NewSubscriberStates(services []string, now time.Time) SubscriberStates {
	states := make(SubscriberStates, 0, len(services))
	for _, svc := range services {
		states = append(states, SubscriberDelivery{
			Service:   svc,
			State:     enum.DeliveryStatePending,
			UpdatedAt: now,
		})
	}
	return states
}

// CountPending returns the number of entries still pending
func (s SubscriberStates) CountPending() int {
	n := 0
	for _, e := range s {
		if e.State == enum.DeliveryStatePending {
			n++
		}
	}
	return n
}
