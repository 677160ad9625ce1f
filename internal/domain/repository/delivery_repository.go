package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
)

// DeliveryRepository tracks per-subscriber delivery of published events
type DeliveryRepository interface {
	Create(ctx context.Context, status *entity.DeliveryStatus) error
	Get(ctx context.Context, eventID uuid.UUID) (*entity.DeliveryStatus, error)
	// MarkResult records one subscriber's acknowledgment and keeps the
	// pending counter in step with the subscriber entries
	MarkResult(ctx context.Context, eventID uuid.UUID, service string, state enum.DeliveryState) error
	// ListPending returns events published inside the lookback window whose
	// last publish is older than the failure threshold and that still have a
	// pending subscriber entry
	ListPending(ctx context.Context, threshold, window time.Duration, limit int) ([]entity.DeliveryStatus, error)
	// MarkRepublished stamps the event after the sweep re-sent it, so an
	// overlapping sweep run does not send it again
	MarkRepublished(ctx context.Context, eventID uuid.UUID) error
}
