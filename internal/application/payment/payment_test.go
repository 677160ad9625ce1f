package payment

import (
	"testing"

	"github.com/poscore/transaction-api/internal/domain/entity"
)

func TestCashPayGivesChange(t *testing.T) {
	cart := &entity.Cart{}
	h := cashHandler{}

	if err := h.Pay(cart, 750, 1000, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cart.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(cart.Payments))
	}
	p := cart.Payments[0]
	if p.Change != 250 {
		t.Errorf("change = %v, want 250", p.Change)
	}
	if cart.PaymentAmount != 750 || cart.DepositAmount != 1000 || cart.ChangeAmount != 250 {
		t.Errorf("totals = payment %v deposit %v change %v", cart.PaymentAmount, cart.DepositAmount, cart.ChangeAmount)
	}
}

func TestCashRefundClearsChange(t *testing.T) {
	cart := &entity.Cart{}
	h := cashHandler{}
	if err := h.Pay(cart, 750, 1000, nil); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if err := h.Refund(cart, 1); err != nil {
		t.Fatalf("refund: %v", err)
	}

	if cart.ChangeAmount != 0 {
		t.Errorf("change after refund = %v, want 0", cart.ChangeAmount)
	}
	if cart.PaymentAmount != 0 {
		t.Errorf("payment after refund = %v, want 0", cart.PaymentAmount)
	}
	if !cart.Payments[0].Cancelled {
		t.Error("payment line should be soft-cancelled, not removed")
	}
	if len(cart.Payments) != 1 {
		t.Errorf("payments = %d, want 1 retained for audit", len(cart.Payments))
	}
}

func TestCashRejectsShortDeposit(t *testing.T) {
	cart := &entity.Cart{}
	if err := (cashHandler{}).Pay(cart, 750, 500, nil); err == nil {
		t.Fatal("expected error for deposit below amount")
	}
	if len(cart.Payments) != 0 || cart.PaymentAmount != 0 {
		t.Error("rejected payment must not mutate the cart")
	}
}

func TestCashlessRejectsOverpayment(t *testing.T) {
	cart := &entity.Cart{BalanceAmount: 500}
	err := (cashlessHandler{}).Pay(cart, 500, 600, nil)
	if err == nil {
		t.Fatal("expected error when deposit exceeds the remaining balance")
	}
	if len(cart.Payments) != 0 || cart.PaymentAmount != 0 || cart.DepositAmount != 0 {
		t.Error("rejected payment must not mutate the cart")
	}
}

func TestCashlessExactAmount(t *testing.T) {
	cart := &entity.Cart{}
	if err := (cashlessHandler{}).Pay(cart, 500, 500, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ChangeAmount != 0 {
		t.Errorf("cashless change = %v, want 0", cart.ChangeAmount)
	}
	if cart.PaymentAmount != 500 {
		t.Errorf("payment = %v, want 500", cart.PaymentAmount)
	}
}

func TestRefundTwiceFails(t *testing.T) {
	cart := &entity.Cart{}
	h := otherHandler{}
	if err := h.Pay(cart, 300, 0, map[string]any{"voucher": "V-1"}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if err := h.Refund(cart, 1); err != nil {
		t.Fatalf("first refund: %v", err)
	}
	if err := h.Refund(cart, 1); err == nil {
		t.Fatal("second refund of the same line should fail")
	}
}

func TestRegistryUnknownCode(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ForCode("barter"); err == nil {
		t.Error("expected error for unregistered method code")
	}
	for _, code := range []string{MethodCash, MethodCashless, MethodOther} {
		if _, err := r.ForCode(code); err != nil {
			t.Errorf("code %q: unexpected error %v", code, err)
		}
	}
}
