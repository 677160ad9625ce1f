package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/application/payment"
	"github.com/poscore/transaction-api/internal/application/tax"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/internal/domain/repository"
	infraRepo "github.com/poscore/transaction-api/internal/infrastructure/repository"
	"github.com/poscore/transaction-api/pkg/apperror"
	"github.com/poscore/transaction-api/pkg/receipt"
)

// maxUpdateRetries bounds the reload-and-retry loop on version conflicts
const maxUpdateRetries = 3

// TransactionPublisher publishes a completed transaction and tracks its
// delivery. Completion never fails on a publish error; the republish sweep
// picks up what the broker dropped.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, tx *entity.Transaction) error
}

// CartService drives the cart through its lifecycle: item entry, discounts,
// payment and completion. Every mutation is gated by the state machine and
// written through the versioned cart store.
type CartService struct {
	cartRepo    repository.CartRepository
	txRepo      repository.TransactionRepository
	counterRepo repository.CounterRepository
	itemRepo    repository.ItemRepository
	taxes       *tax.Registry
	payments    *payment.Registry
	publisher   TransactionPublisher
	receipts    *receipt.Builder
}

// NewCartService creates a new cart service
func NewCartService(
	cartRepo repository.CartRepository,
	txRepo repository.TransactionRepository,
	counterRepo repository.CounterRepository,
	itemRepo repository.ItemRepository,
	taxes *tax.Registry,
	payments *payment.Registry,
	publisher TransactionPublisher,
	receipts *receipt.Builder,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		txRepo:      txRepo,
		counterRepo: counterRepo,
		itemRepo:    itemRepo,
		taxes:       taxes,
		payments:    payments,
		publisher:   publisher,
		receipts:    receipts,
	}
}

// CreateCartInput represents the create cart input
type CreateCartInput struct {
	StoreCode    string
	TerminalID   uuid.UUID
	StaffID      string
	BusinessDate string
}

// CreateCart opens a new cart in the Idle state. Item master data is
// snapshotted into the cart here; price and tax lookups never leave the cart
// for its whole lifetime.
func (s *CartService) CreateCart(ctx context.Context, input *CreateCartInput) (*entity.Cart, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]entity.ItemSnapshot, len(items))
	for i := range items {
		snapshot[items[i].Code] = items[i].Snapshot()
	}

	now := time.Now().UTC()
	cart := &entity.Cart{
		ID:           uuid.New(),
		TenantID:     tenantID,
		StoreCode:    input.StoreCode,
		TerminalID:   input.TerminalID,
		StaffID:      input.StaffID,
		BusinessDate: input.BusinessDate,
		Status:       enum.CartStatusIdle,
		ItemSnapshot: snapshot,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart retrieves a cart by ID
func (s *CartService) GetCart(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperror.NewNotFoundError("Cart")
	}
	return cart, nil
}

// AddItemInput represents the add item input
type AddItemInput struct {
	ItemCode  string
	Quantity  int
	UnitPrice *float64 // price override; nil uses the snapshot price
}

// AddItem appends a line to the cart. The first successful addition moves an
// Idle cart into EnteringItem.
func (s *CartService) AddItem(ctx context.Context, cartID uuid.UUID, input *AddItemInput) (*entity.Cart, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be positive")
	}
	return s.withCart(ctx, cartID, enum.EventAddItem, func(cart *entity.Cart) error {
		snap, ok := cart.ItemSnapshot[input.ItemCode]
		if !ok {
			return apperror.NewNotFoundError("Item " + input.ItemCode)
		}

		line := entity.CartItem{
			LineNo:       cart.NextLineNo(),
			ItemCode:     snap.Code,
			ItemName:     snap.Name,
			Quantity:     input.Quantity,
			UnitPrice:    snap.Price,
			TaxRate:      snap.TaxRate,
			TaxMode:      snap.TaxMode,
			RoundingMode: snap.RoundingMode,
		}
		if input.UnitPrice != nil {
			original := snap.Price
			line.OriginalPrice = &original
			line.UnitPrice = *input.UnitPrice
		}
		cart.Items = append(cart.Items, line)

		if cart.Status == enum.CartStatusIdle {
			cart.Status = enum.CartStatusEnteringItem
		}
		return s.recalculate(cart)
	})
}

// UpdateItemInput represents the update item input
type UpdateItemInput struct {
	Quantity  *int
	UnitPrice *float64
}

// UpdateItem changes the quantity or price of an existing line
func (s *CartService) UpdateItem(ctx context.Context, cartID uuid.UUID, lineNo int, input *UpdateItemInput) (*entity.Cart, error) {
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be positive")
	}
	return s.withCart(ctx, cartID, enum.EventUpdateItem, func(cart *entity.Cart) error {
		line := cart.FindItem(lineNo)
		if line == nil || line.Cancelled {
			return apperror.NewNotFoundError("Cart line")
		}
		if input.Quantity != nil {
			line.Quantity = *input.Quantity
		}
		if input.UnitPrice != nil {
			if line.OriginalPrice == nil {
				original := line.UnitPrice
				line.OriginalPrice = &original
			}
			line.UnitPrice = *input.UnitPrice
		}
		return s.recalculate(cart)
	})
}

// RemoveItem soft-cancels a line; the line stays in the cart for audit but
// contributes nothing to the totals.
func (s *CartService) RemoveItem(ctx context.Context, cartID uuid.UUID, lineNo int) (*entity.Cart, error) {
	return s.withCart(ctx, cartID, enum.EventRemoveItem, func(cart *entity.Cart) error {
		line := cart.FindItem(lineNo)
		if line == nil || line.Cancelled {
			return apperror.NewNotFoundError("Cart line")
		}
		line.Cancelled = true
		return s.recalculate(cart)
	})
}

// AddDiscountInput represents the add discount input
type AddDiscountInput struct {
	LineNo      *int // nil applies the discount to the whole cart
	Description string
	Amount      float64
}

// AddDiscount applies a discount either to one line or to the whole cart
func (s *CartService) AddDiscount(ctx context.Context, cartID uuid.UUID, input *AddDiscountInput) (*entity.Cart, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Discount amount must be positive")
	}
	return s.withCart(ctx, cartID, enum.EventAddDiscount, func(cart *entity.Cart) error {
		discount := entity.DiscountLine{Description: input.Description, Amount: input.Amount}
		if input.LineNo == nil {
			cart.CartDiscounts = append(cart.CartDiscounts, discount)
		} else {
			line := cart.FindItem(*input.LineNo)
			if line == nil || line.Cancelled {
				return apperror.NewNotFoundError("Cart line")
			}
			line.Discounts = append(line.Discounts, discount)
		}
		return s.recalculate(cart)
	})
}

// Subtotal closes item entry and moves the cart to Paying
func (s *CartService) Subtotal(ctx context.Context, cartID uuid.UUID) (*entity.Cart, error) {
	return s.withCart(ctx, cartID, enum.EventSubtotal, func(cart *entity.Cart) error {
		if err := s.recalculate(cart); err != nil {
			return err
		}
		cart.Status = enum.CartStatusPaying
		return nil
	})
}

// Resume reopens item entry from the Paying state
func (s *CartService) Resume(ctx context.Context, cartID uuid.UUID) (*entity.Cart, error) {
	return s.withCart(ctx, cartID, enum.EventResume, func(cart *entity.Cart) error {
		cart.Status = enum.CartStatusEnteringItem
		return nil
	})
}

// AddPaymentInput represents the add payment input
type AddPaymentInput struct {
	MethodCode string
	Amount     float64
	Deposit    float64
	Detail     map[string]any
}

// AddPayment applies one payment through the method's registered handler
func (s *CartService) AddPayment(ctx context.Context, cartID uuid.UUID, input *AddPaymentInput) (*entity.Cart, error) {
	handler, err := s.payments.ForCode(input.MethodCode)
	if err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}
	return s.withCart(ctx, cartID, enum.EventAddPayment, func(cart *entity.Cart) error {
		if input.Amount > cart.BalanceAmount && input.MethodCode != payment.MethodCash {
			return apperror.ErrDepositExceedsAmount
		}
		if err := handler.Pay(cart, input.Amount, input.Deposit, input.Detail); err != nil {
			return err
		}
		return s.recalculate(cart)
	})
}

// CancelPayment reverses a payment line while the cart is still in Paying
func (s *CartService) CancelPayment(ctx context.Context, cartID uuid.UUID, seqNo int) (*entity.Cart, error) {
	return s.withCart(ctx, cartID, enum.EventCancelPayment, func(cart *entity.Cart) error {
		var method string
		for _, p := range cart.Payments {
			if p.SeqNo == seqNo {
				method = p.MethodCode
				break
			}
		}
		if method == "" {
			return apperror.NewNotFoundError("Payment")
		}
		handler, err := s.payments.ForCode(method)
		if err != nil {
			return err
		}
		if err := handler.Cancel(cart, seqNo); err != nil {
			return err
		}
		return s.recalculate(cart)
	})
}

// Bill completes the cart: allocates the transaction and receipt numbers,
// writes the immutable transaction record, retires the cart and publishes the
// event. Replaying the request after the record exists returns the existing
// record instead of creating a second one.
func (s *CartService) Bill(ctx context.Context, cartID uuid.UUID) (*entity.Transaction, error) {
	cart, err := s.cartRepo.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil || !cart.Status.Allows(enum.EventBill) {
		// A replayed completion finds the cart retired or already completed;
		// the durable record decides whether this is an error.
		if existing, terr := s.txRepo.GetByCartID(ctx, cartID); terr == nil && existing != nil {
			return existing, nil
		}
		if cart == nil {
			return nil, apperror.NewNotFoundError("Cart")
		}
		return nil, apperror.ErrIllegalOperation
	}
	if err := s.recalculate(cart); err != nil {
		return nil, err
	}
	if cart.BalanceAmount != 0 {
		return nil, apperror.ErrBalanceNotZero
	}

	if existing, err := s.txRepo.GetByCartID(ctx, cartID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	transactionNo, err := s.counterRepo.Next(ctx, cart.TerminalID, entity.CounterTransactionNo)
	if err != nil {
		return nil, err
	}
	receiptNo, err := s.counterRepo.Next(ctx, cart.TerminalID, entity.CounterReceiptNo)
	if err != nil {
		return nil, err
	}

	tx, err := buildTransaction(cart, enum.TransactionTypeSale, transactionNo, receiptNo, nil, s.receipts)
	if err != nil {
		return nil, err
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		// The unique index on cart_id turns a completion race into a
		// conflict; whoever lost returns the winner's record.
		if existing, gerr := s.txRepo.GetByCartID(ctx, cartID); gerr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	cart.Status = enum.CartStatusCompleted
	if err := s.cartRepo.Delete(ctx, cartID); err != nil {
		// The transaction is durable; a stale cart entry only lives until
		// its TTL expires.
		log.Printf("cart %s: delete after completion failed: %v", cartID, err)
	}

	if err := s.publisher.PublishTransaction(ctx, tx); err != nil {
		log.Printf("transaction %d: publish failed, leaving to republish sweep: %v", tx.TransactionNo, err)
	}

	return tx, nil
}

// Cancel abandons the cart. The cart record is kept under its terminal status
// until the cache TTL retires it.
func (s *CartService) Cancel(ctx context.Context, cartID uuid.UUID) (*entity.Cart, error) {
	return s.withCart(ctx, cartID, enum.EventCancel, func(cart *entity.Cart) error {
		cart.Status = enum.CartStatusCancelled
		return nil
	})
}

// withCart runs one guarded mutation: load, capability check, apply, store.
// A version conflict reloads and retries the whole sequence a bounded number
// of times; the state check runs against the fresh copy every time.
func (s *CartService) withCart(ctx context.Context, cartID uuid.UUID, event enum.CartEvent, fn func(*entity.Cart) error) (*entity.Cart, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		cart, err := s.cartRepo.Get(ctx, cartID)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			return nil, apperror.NewNotFoundError("Cart")
		}
		if !cart.Status.Allows(event) {
			return nil, apperror.ErrIllegalOperation
		}

		if err := fn(cart); err != nil {
			return nil, err
		}
		cart.UpdatedAt = time.Now().UTC()

		err = s.cartRepo.Update(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		time.Sleep(time.Duration(attempt+1) * 20 * time.Millisecond)
	}
	return nil, apperror.ErrStorageFailure
}

// recalculate rebuilds every derived amount from the line items, discounts and
// payments. Tax is computed and rounded once per line, then aggregated by
// (rate, mode) without re-rounding. Line discounts are already netted into
// their line's amount, so DiscountAmount carries only cart-level discounts and
// the identity balance = subtotal - discounts + added tax - payments holds.
func (s *CartService) recalculate(cart *entity.Cart) error {
	subtotal := 0.0
	exclusiveTax := 0.0
	taxTotal := 0.0

	type taxKey struct {
		rate float64
		mode enum.TaxMode
	}
	aggregated := map[taxKey]*entity.TaxLine{}
	var order []taxKey

	for i := range cart.Items {
		line := &cart.Items[i]
		if line.Cancelled {
			line.TaxAmount = 0
			continue
		}
		amount := line.Amount()
		subtotal += amount

		strategy, err := s.taxes.ForMode(line.TaxMode)
		if err != nil {
			return err
		}
		result := strategy.Calculate(amount, line.TaxRate, line.RoundingMode)
		line.TaxAmount = result.TaxAmount
		taxTotal += result.TaxAmount
		if line.TaxMode == enum.TaxModeExclusive {
			exclusiveTax += result.TaxAmount
		}

		key := taxKey{rate: line.TaxRate, mode: line.TaxMode}
		agg, ok := aggregated[key]
		if !ok {
			agg = &entity.TaxLine{Rate: line.TaxRate, Mode: line.TaxMode}
			aggregated[key] = agg
			order = append(order, key)
		}
		agg.TargetAmount += amount
		agg.TaxAmount += result.TaxAmount
	}

	cartDiscounts := 0.0
	for _, d := range cart.CartDiscounts {
		cartDiscounts += d.Amount
	}

	cart.Taxes = cart.Taxes[:0]
	for _, key := range order {
		cart.Taxes = append(cart.Taxes, *aggregated[key])
	}

	cart.SubtotalAmount = subtotal
	cart.DiscountAmount = cartDiscounts
	cart.TaxAmount = taxTotal

	total := subtotal - cartDiscounts + exclusiveTax
	if total < 0 {
		total = 0
	}
	cart.TotalAmount = total
	cart.BalanceAmount = total - cart.PaymentAmount
	return nil
}
