package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
	domainRepo "github.com/poscore/transaction-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new delivery status repository
func NewDeliveryRepository(db *gorm.DB) domainRepo.DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) Create(ctx context.Context, status *entity.DeliveryStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *deliveryRepository) Get(ctx context.Context, eventID uuid.UUID) (*entity.DeliveryStatus, error) {
	var status entity.DeliveryStatus
	err := r.db.WithContext(ctx).First(&status, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// MarkResult rewrites the subscriber entry inside a row-locking transaction so
// two subscribers acknowledging the same event do not clobber each other's
// JSONB update.
func (r *deliveryRepository) MarkResult(ctx context.Context, eventID uuid.UUID, service string, state enum.DeliveryState) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var status entity.DeliveryStatus
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&status, "event_id = ?", eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		found := false
		for i := range status.Subscribers {
			if status.Subscribers[i].Service == service {
				status.Subscribers[i].State = state
				status.Subscribers[i].UpdatedAt = now
				found = true
				break
			}
		}
		if !found {
			// Unknown subscribers are recorded rather than rejected; a new
			// downstream service may start acknowledging before its name is
			// added to the configured list.
			status.Subscribers = append(status.Subscribers, entity.SubscriberDelivery{
				Service:   service,
				State:     state,
				UpdatedAt: now,
			})
		}

		return tx.Model(&entity.DeliveryStatus{}).
			Where("event_id = ?", eventID).
			Updates(map[string]interface{}{
				"subscribers":   status.Subscribers,
				"pending_count": status.Subscribers.CountPending(),
			}).Error
	})
}

func (r *deliveryRepository) ListPending(ctx context.Context, threshold, window time.Duration, limit int) ([]entity.DeliveryStatus, error) {
	now := time.Now().UTC()
	var statuses []entity.DeliveryStatus
	err := r.db.WithContext(ctx).
		Where("pending_count > 0").
		Where("published_at >= ?", now.Add(-window)).
		Where("last_published_at <= ?", now.Add(-threshold)).
		Order("published_at").
		Limit(limit).
		Find(&statuses).Error
	return statuses, err
}

func (r *deliveryRepository) MarkRepublished(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.DeliveryStatus{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"last_published_at": time.Now().UTC(),
			"republish_count":   gorm.Expr("republish_count + 1"),
		}).Error
}
