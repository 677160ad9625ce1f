package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/application/service"
	"github.com/poscore/transaction-api/internal/domain/entity"
)

type fakeTerminalRepo struct {
	created []*entity.Terminal
}

func (f *fakeTerminalRepo) Create(_ context.Context, terminal *entity.Terminal) error {
	if terminal.ID == uuid.Nil {
		terminal.ID = uuid.New()
	}
	f.created = append(f.created, terminal)
	return nil
}

func (f *fakeTerminalRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Terminal, error) {
	for _, t := range f.created {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTerminalRepo) FindForAuth(ctx context.Context, id uuid.UUID) (*entity.Terminal, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeTerminalRepo) List(_ context.Context, _ string) ([]entity.Terminal, error) {
	return nil, nil
}

func (f *fakeTerminalRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeSeedCounterRepo struct {
	seeded map[uuid.UUID][]string
}

func (f *fakeSeedCounterRepo) Next(_ context.Context, _ uuid.UUID, _ string) (int64, error) {
	return 1, nil
}

func (f *fakeSeedCounterRepo) Seed(_ context.Context, terminalID uuid.UUID, names []string) error {
	if f.seeded == nil {
		f.seeded = map[uuid.UUID][]string{}
	}
	f.seeded[terminalID] = names
	return nil
}

func (f *fakeSeedCounterRepo) Current(_ context.Context, _ uuid.UUID, _ string) (int64, error) {
	return 0, nil
}

func registerRequest(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/terminals", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Registration is the one unauthenticated operation, so the tenant scope must
// come from the request body rather than the auth middleware.
func TestRegisterTerminalWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	termRepo := &fakeTerminalRepo{}
	counterRepo := &fakeSeedCounterRepo{}
	h := NewTerminalHandler(service.NewTerminalService(termRepo, counterRepo))
	router := gin.New()
	router.POST("/terminals", h.Register)

	tenantID := uuid.New()
	w := registerRequest(t, router, gin.H{
		"tenant_id":   tenantID.String(),
		"store_code":  "S001",
		"terminal_no": 1,
		"name":        "Front register",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Terminal entity.Terminal `json:"terminal"`
			APIKey   string          `json:"api_key"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.APIKey == "" {
		t.Error("plain API key must be returned at registration")
	}
	if resp.Data.Terminal.TenantID != tenantID {
		t.Errorf("tenant = %v, want %v", resp.Data.Terminal.TenantID, tenantID)
	}

	if len(termRepo.created) != 1 {
		t.Fatalf("terminals created = %d, want 1", len(termRepo.created))
	}
	names := counterRepo.seeded[termRepo.created[0].ID]
	if len(names) != 3 {
		t.Errorf("seeded counters = %v, want transaction_no/receipt_no/business", names)
	}
}

func TestRegisterTerminalRequiresTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTerminalHandler(service.NewTerminalService(&fakeTerminalRepo{}, &fakeSeedCounterRepo{}))
	router := gin.New()
	router.POST("/terminals", h.Register)

	w := registerRequest(t, router, gin.H{
		"store_code":  "S001",
		"terminal_no": 1,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without tenant_id", w.Code)
	}
}
