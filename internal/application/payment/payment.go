package payment

import (
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/pkg/apperror"
)

// Built-in payment method codes
const (
	MethodCash     = "cash"
	MethodCashless = "cashless"
	MethodOther    = "other"
)

// Handler applies one payment method's arithmetic to a cart. Pay appends a
// payment line and adjusts the cart's payment totals; Refund and Cancel
// reverse a previously applied line by sequence number. Handlers never touch
// BalanceAmount; the caller recomputes it from the adjusted totals.
type Handler interface {
	Pay(cart *entity.Cart, amount, deposit float64, detail map[string]any) error
	Refund(cart *entity.Cart, seqNo int) error
	Cancel(cart *entity.Cart, seqNo int) error
}

// Registry maps a payment method code to its handler. Like the tax registry,
// the table is fixed at compile time.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns a registry with the built-in cash, cashless and other
// handlers registered.
func NewRegistry() *Registry {
	return &Registry{
		handlers: map[string]Handler{
			MethodCash:     cashHandler{},
			MethodCashless: cashlessHandler{},
			MethodOther:    otherHandler{},
		},
	}
}

// Register adds or replaces the handler for a method code
func (r *Registry) Register(code string, h Handler) {
	r.handlers[code] = h
}

// ForCode returns the handler for the given method code
func (r *Registry) ForCode(code string) (Handler, error) {
	h, ok := r.handlers[code]
	if !ok {
		return nil, apperror.ErrUnsupportedPayment
	}
	return h, nil
}

// appendPayment records the line and rolls its figures into the cart totals
func appendPayment(cart *entity.Cart, method string, amount, deposit, change float64, detail map[string]any) {
	cart.Payments = append(cart.Payments, entity.CartPayment{
		SeqNo:      cart.NextPaymentSeq(),
		MethodCode: method,
		Amount:     amount,
		Deposit:    deposit,
		Change:     change,
		Detail:     detail,
	})
	cart.PaymentAmount += amount
	cart.DepositAmount += deposit
	cart.ChangeAmount += change
}

// reversePayment soft-cancels the line and backs its figures out of the totals
func reversePayment(cart *entity.Cart, seqNo int) error {
	for i := range cart.Payments {
		p := &cart.Payments[i]
		if p.SeqNo != seqNo {
			continue
		}
		if p.Cancelled {
			return apperror.NewConflictError("Payment has already been cancelled")
		}
		p.Cancelled = true
		cart.PaymentAmount -= p.Amount
		cart.DepositAmount -= p.Deposit
		cart.ChangeAmount -= p.Change
		return nil
	}
	return apperror.NewNotFoundError("Payment")
}

// cashHandler gives change when the tendered deposit exceeds the amount owed
type cashHandler struct{}

func (cashHandler) Pay(cart *entity.Cart, amount, deposit float64, detail map[string]any) error {
	if deposit == 0 {
		deposit = amount
	}
	if deposit < amount {
		return apperror.NewBadRequestError("Cash deposit is less than the payment amount")
	}
	change := deposit - amount
	if change < 0 {
		change = 0
	}
	appendPayment(cart, MethodCash, amount, deposit, change, detail)
	return nil
}

func (cashHandler) Refund(cart *entity.Cart, seqNo int) error {
	return reversePayment(cart, seqNo)
}

func (cashHandler) Cancel(cart *entity.Cart, seqNo int) error {
	return reversePayment(cart, seqNo)
}

// cashlessHandler never gives change, so the deposit may not exceed the amount
type cashlessHandler struct{}

func (cashlessHandler) Pay(cart *entity.Cart, amount, deposit float64, detail map[string]any) error {
	if deposit == 0 {
		deposit = amount
	}
	if deposit > amount {
		return apperror.ErrDepositExceedsAmount
	}
	appendPayment(cart, MethodCashless, deposit, deposit, 0, detail)
	return nil
}

func (cashlessHandler) Refund(cart *entity.Cart, seqNo int) error {
	return reversePayment(cart, seqNo)
}

func (cashlessHandler) Cancel(cart *entity.Cart, seqNo int) error {
	return reversePayment(cart, seqNo)
}

// otherHandler is pass-through accounting for methods with no special
// arithmetic; the detail map carries whatever the method needs.
type otherHandler struct{}

func (otherHandler) Pay(cart *entity.Cart, amount, deposit float64, detail map[string]any) error {
	if deposit == 0 {
		deposit = amount
	}
	appendPayment(cart, MethodOther, amount, deposit, 0, detail)
	return nil
}

func (otherHandler) Refund(cart *entity.Cart, seqNo int) error {
	return reversePayment(cart, seqNo)
}

func (otherHandler) Cancel(cart *entity.Cart, seqNo int) error {
	return reversePayment(cart, seqNo)
}
