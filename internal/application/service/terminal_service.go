package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/repository"
	infraRepo "github.com/poscore/transaction-api/internal/infrastructure/repository"
	"github.com/poscore/transaction-api/pkg/apperror"
	"github.com/poscore/transaction-api/pkg/utils"
)

// TerminalService registers terminals and manages their counters
type TerminalService struct {
	terminalRepo repository.TerminalRepository
	counterRepo  repository.CounterRepository
}

// NewTerminalService creates a new terminal service
func NewTerminalService(terminalRepo repository.TerminalRepository, counterRepo repository.CounterRepository) *TerminalService {
	return &TerminalService{terminalRepo: terminalRepo, counterRepo: counterRepo}
}

// RegisterTerminalInput represents the register terminal input
type RegisterTerminalInput struct {
	StoreCode  string
	TerminalNo int
	Name       string
}

// RegisterTerminal creates a terminal with its counter rows and returns the
// plain API key. The key is shown exactly once; only its hash is stored.
func (s *TerminalService) RegisterTerminal(ctx context.Context, input *RegisterTerminalInput) (*entity.Terminal, string, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, "", apperror.NewBadRequestError("Tenant context required")
	}

	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}
	hash, err := utils.HashAPIKey(apiKey)
	if err != nil {
		return nil, "", err
	}

	terminal := &entity.Terminal{
		TenantID:   tenantID,
		StoreCode:  input.StoreCode,
		TerminalNo: input.TerminalNo,
		Name:       input.Name,
		APIKeyHash: hash,
	}
	if err := s.terminalRepo.Create(ctx, terminal); err != nil {
		return nil, "", err
	}

	names := []string{entity.CounterTransactionNo, entity.CounterReceiptNo, entity.CounterBusiness}
	if err := s.counterRepo.Seed(ctx, terminal.ID, names); err != nil {
		return nil, "", err
	}

	return terminal, apiKey, nil
}

// GetTerminal retrieves a terminal by ID
func (s *TerminalService) GetTerminal(ctx context.Context, id uuid.UUID) (*entity.Terminal, error) {
	terminal, err := s.terminalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if terminal == nil {
		return nil, apperror.NewNotFoundError("Terminal")
	}
	return terminal, nil
}

// ListTerminals lists terminals, optionally filtered by store
func (s *TerminalService) ListTerminals(ctx context.Context, storeCode string) ([]entity.Terminal, error) {
	return s.terminalRepo.List(ctx, storeCode)
}

// DeleteTerminal removes a terminal
func (s *TerminalService) DeleteTerminal(ctx context.Context, id uuid.UUID) error {
	terminal, err := s.terminalRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if terminal == nil {
		return apperror.NewNotFoundError("Terminal")
	}
	return s.terminalRepo.Delete(ctx, id)
}

// CounterValue reads a named counter without incrementing it
func (s *TerminalService) CounterValue(ctx context.Context, terminalID uuid.UUID, name string) (int64, error) {
	return s.counterRepo.Current(ctx, terminalID, name)
}

// NextBusinessNo advances the business counter. The business counter marks
// day-close and similar housekeeping operations on the terminal.
func (s *TerminalService) NextBusinessNo(ctx context.Context, terminalID uuid.UUID) (int64, error) {
	return s.counterRepo.Next(ctx, terminalID, entity.CounterBusiness)
}
