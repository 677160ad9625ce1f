package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/config"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/internal/domain/repository"
	"github.com/poscore/transaction-api/internal/infrastructure/messaging"
	"github.com/poscore/transaction-api/pkg/apperror"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TransactionEvent is the message published for every completed transaction.
// Subscribers de-duplicate on EventID; a republished event carries the same
// identifier as the original.
type TransactionEvent struct {
	EventID       uuid.UUID            `json:"event_id"`
	TenantID      uuid.UUID            `json:"tenant_id"`
	StoreCode     string               `json:"store_code"`
	TerminalID    uuid.UUID            `json:"terminal_id"`
	TransactionNo int64                `json:"transaction_no"`
	ReceiptNo     int64                `json:"receipt_no"`
	Type          enum.TransactionType `json:"type"`
	BusinessDate  string               `json:"business_date"`
	Transaction   *entity.Transaction  `json:"transaction"`
}

// DeliveryService publishes transaction events, records per-subscriber
// acknowledgments and periodically republishes events that went
// unacknowledged past the failure threshold.
type DeliveryService struct {
	deliveryRepo repository.DeliveryRepository
	publisher    messaging.Publisher
	cfg          config.DeliveryConfig
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(deliveryRepo repository.DeliveryRepository, publisher messaging.Publisher, cfg config.DeliveryConfig) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// PublishTransaction publishes the completion event. The delivery record is
// written before the broker call, so an event the broker dropped still has a
// pending record for the sweep to find.
func (s *DeliveryService) PublishTransaction(ctx context.Context, tx *entity.Transaction) error {
	now := time.Now().UTC()
	event := &TransactionEvent{
		EventID:       uuid.New(),
		TenantID:      tx.TenantID,
		StoreCode:     tx.StoreCode,
		TerminalID:    tx.TerminalID,
		TransactionNo: tx.TransactionNo,
		ReceiptNo:     tx.ReceiptNo,
		Type:          tx.Type,
		BusinessDate:  tx.BusinessDate,
		Transaction:   tx,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	status := &entity.DeliveryStatus{
		EventID:         event.EventID,
		TenantID:        tx.TenantID,
		PublishedAt:     now,
		LastPublishedAt: now,
		Payload:         datatypes.JSON(payload),
		Subscribers:     entity.NewSubscriberStates(s.cfg.Subscribers, now),
		PendingCount:    len(s.cfg.Subscribers),
	}
	if err := s.deliveryRepo.Create(ctx, status); err != nil {
		return err
	}

	return s.publisher.Publish(ctx, event.EventID.String(), json.RawMessage(payload))
}

// UpdateStatus records one subscriber's acknowledgment callback
func (s *DeliveryService) UpdateStatus(ctx context.Context, eventID uuid.UUID, service string, state enum.DeliveryState) error {
	if !state.Valid() {
		return apperror.NewBadRequestError("Unknown delivery state")
	}
	err := s.deliveryRepo.MarkResult(ctx, eventID, service, state)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFoundError("Delivery status")
	}
	return err
}

// GetStatus retrieves the delivery record for one event
func (s *DeliveryService) GetStatus(ctx context.Context, eventID uuid.UUID) (*entity.DeliveryStatus, error) {
	status, err := s.deliveryRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, apperror.NewNotFoundError("Delivery status")
	}
	return status, nil
}

// RunSweep republishes every event inside the lookback window that still has a
// pending subscriber past the failure threshold. Each qualifying event goes
// out once per sweep; the LastPublishedAt stamp keeps an overlapping run from
// sending it again. Returns the number of events republished.
func (s *DeliveryService) RunSweep(ctx context.Context) (int, error) {
	pending, err := s.deliveryRepo.ListPending(ctx, s.cfg.FailureThreshold, s.cfg.LookbackWindow, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	republished := 0
	for i := range pending {
		status := &pending[i]
		// Stamp first: if the broker call fails the event simply waits for
		// the next sweep instead of being hammered inside this one.
		if err := s.deliveryRepo.MarkRepublished(ctx, status.EventID); err != nil {
			log.Printf("sweep: stamp %s failed: %v", status.EventID, err)
			continue
		}
		if err := s.publisher.Publish(ctx, status.EventID.String(), json.RawMessage(status.Payload)); err != nil {
			log.Printf("sweep: republish %s failed: %v", status.EventID, err)
			continue
		}
		republished++
	}
	return republished, nil
}

// Start runs the sweep on its own ticker until the context is cancelled
func (s *DeliveryService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.RunSweep(ctx)
				if err != nil {
					log.Printf("sweep: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("sweep: republished %d event(s)", n)
				}
			}
		}
	}()
}
