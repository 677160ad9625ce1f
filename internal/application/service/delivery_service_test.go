package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/config"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
)

type fakeDeliveryRepo struct {
	statuses map[uuid.UUID]*entity.DeliveryStatus
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{statuses: map[uuid.UUID]*entity.DeliveryStatus{}}
}

func (f *fakeDeliveryRepo) Create(_ context.Context, status *entity.DeliveryStatus) error {
	f.statuses[status.EventID] = status
	return nil
}

func (f *fakeDeliveryRepo) Get(_ context.Context, eventID uuid.UUID) (*entity.DeliveryStatus, error) {
	return f.statuses[eventID], nil
}

func (f *fakeDeliveryRepo) MarkResult(_ context.Context, eventID uuid.UUID, service string, state enum.DeliveryState) error {
	status := f.statuses[eventID]
	now := time.Now().UTC()
	for i := range status.Subscribers {
		if status.Subscribers[i].Service == service {
			status.Subscribers[i].State = state
			status.Subscribers[i].UpdatedAt = now
		}
	}
	status.PendingCount = status.Subscribers.CountPending()
	return nil
}

func (f *fakeDeliveryRepo) ListPending(_ context.Context, threshold, window time.Duration, limit int) ([]entity.DeliveryStatus, error) {
	now := time.Now().UTC()
	var out []entity.DeliveryStatus
	for _, status := range f.statuses {
		if status.PendingCount == 0 {
			continue
		}
		if status.PublishedAt.Before(now.Add(-window)) {
			continue
		}
		if status.LastPublishedAt.After(now.Add(-threshold)) {
			continue
		}
		out = append(out, *status)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDeliveryRepo) MarkRepublished(_ context.Context, eventID uuid.UUID) error {
	status := f.statuses[eventID]
	status.LastPublishedAt = time.Now().UTC()
	status.RepublishCount++
	return nil
}

type fakeBroker struct {
	keys []string
	err  error
}

func (f *fakeBroker) Publish(_ context.Context, key string, _ any) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeBroker) Close() error { return nil }

func deliveryConfig() config.DeliveryConfig {
	return config.DeliveryConfig{
		Subscribers:      []string{"report", "journal", "stock"},
		SweepInterval:    time.Minute,
		FailureThreshold: 15 * time.Minute,
		LookbackWindow:   24 * time.Hour,
		SweepBatchSize:   100,
	}
}

func TestPublishCreatesPendingRecord(t *testing.T) {
	repo := newFakeDeliveryRepo()
	broker := &fakeBroker{}
	svc := NewDeliveryService(repo, broker, deliveryConfig())

	tx := &entity.Transaction{ID: uuid.New(), TenantID: uuid.New(), TransactionNo: 42}
	if err := svc.PublishTransaction(context.Background(), tx); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(broker.keys) != 1 {
		t.Fatalf("broker publishes = %d, want 1", len(broker.keys))
	}
	if len(repo.statuses) != 1 {
		t.Fatalf("delivery records = %d, want 1", len(repo.statuses))
	}
	for _, status := range repo.statuses {
		if status.PendingCount != 3 {
			t.Errorf("pending = %d, want 3", status.PendingCount)
		}
		if len(status.Subscribers) != 3 {
			t.Errorf("subscribers = %d, want 3", len(status.Subscribers))
		}
	}
}

func TestSweepRepublishesOverdueEvent(t *testing.T) {
	repo := newFakeDeliveryRepo()
	broker := &fakeBroker{}
	svc := NewDeliveryService(repo, broker, deliveryConfig())

	past := time.Now().UTC().Add(-30 * time.Minute)
	eventID := uuid.New()
	repo.statuses[eventID] = &entity.DeliveryStatus{
		EventID:         eventID,
		PublishedAt:     past,
		LastPublishedAt: past,
		Payload:         []byte(`{"event_id":"x"}`),
		Subscribers:     entity.NewSubscriberStates([]string{"report", "journal"}, past),
		PendingCount:    2,
	}

	n, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("republished = %d, want 1", n)
	}
	if len(broker.keys) != 1 || broker.keys[0] != eventID.String() {
		t.Errorf("republish must reuse the original event id, got %v", broker.keys)
	}
	if repo.statuses[eventID].RepublishCount != 1 {
		t.Errorf("republish count = %d, want 1", repo.statuses[eventID].RepublishCount)
	}

	// An immediately following sweep sees the fresh stamp and stays quiet
	n, err = svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep republished = %d, want 0", n)
	}
}

func TestSweepIgnoresAcknowledgedEvents(t *testing.T) {
	repo := newFakeDeliveryRepo()
	broker := &fakeBroker{}
	svc := NewDeliveryService(repo, broker, deliveryConfig())

	past := time.Now().UTC().Add(-30 * time.Minute)
	eventID := uuid.New()
	subs := entity.NewSubscriberStates([]string{"report"}, past)
	subs[0].State = enum.DeliveryStateReceived
	repo.statuses[eventID] = &entity.DeliveryStatus{
		EventID:         eventID,
		PublishedAt:     past,
		LastPublishedAt: past,
		Payload:         []byte(`{}`),
		Subscribers:     subs,
		PendingCount:    0,
	}

	n, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 || len(broker.keys) != 0 {
		t.Error("fully acknowledged events must never be republished")
	}
}

func TestSweepIgnoresEventsOutsideWindow(t *testing.T) {
	repo := newFakeDeliveryRepo()
	broker := &fakeBroker{}
	svc := NewDeliveryService(repo, broker, deliveryConfig())

	old := time.Now().UTC().Add(-48 * time.Hour)
	eventID := uuid.New()
	repo.statuses[eventID] = &entity.DeliveryStatus{
		EventID:         eventID,
		PublishedAt:     old,
		LastPublishedAt: old,
		Payload:         []byte(`{}`),
		Subscribers:     entity.NewSubscriberStates([]string{"report"}, old),
		PendingCount:    1,
	}

	n, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Error("events older than the lookback window are left alone")
	}
}

func TestUpdateStatusMarksSubscriber(t *testing.T) {
	repo := newFakeDeliveryRepo()
	svc := NewDeliveryService(repo, &fakeBroker{}, deliveryConfig())

	tx := &entity.Transaction{ID: uuid.New(), TenantID: uuid.New()}
	if err := svc.PublishTransaction(context.Background(), tx); err != nil {
		t.Fatalf("publish: %v", err)
	}
	var eventID uuid.UUID
	for id := range repo.statuses {
		eventID = id
	}

	if err := svc.UpdateStatus(context.Background(), eventID, "report", enum.DeliveryStateReceived); err != nil {
		t.Fatalf("update status: %v", err)
	}

	status := repo.statuses[eventID]
	if status.PendingCount != 2 {
		t.Errorf("pending = %d, want 2", status.PendingCount)
	}

	if err := svc.UpdateStatus(context.Background(), eventID, "report", "lost"); err == nil {
		t.Error("unknown delivery state must be rejected")
	}
}
