package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

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

// fakeCartRepo keeps carts in memory with the same versioned update semantics
// as the real store.
type fakeCartRepo struct {
	carts map[uuid.UUID][]byte // stored as JSON so mutations need a real Update
	// conflictsLeft makes the next N updates fail with a version conflict
	conflictsLeft int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[uuid.UUID][]byte{}}
}

func (f *fakeCartRepo) Create(_ context.Context, cart *entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	f.carts[cart.ID] = data
	return nil
}

func (f *fakeCartRepo) Get(_ context.Context, id uuid.UUID) (*entity.Cart, error) {
	data, ok := f.carts[id]
	if !ok {
		return nil, nil
	}
	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (f *fakeCartRepo) Update(_ context.Context, cart *entity.Cart) error {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return repository.ErrVersionConflict
	}
	stored, ok := f.carts[cart.ID]
	if !ok {
		return repository.ErrVersionConflict
	}
	var current entity.Cart
	if err := json.Unmarshal(stored, &current); err != nil {
		return err
	}
	if current.Version != cart.Version {
		return repository.ErrVersionConflict
	}
	cart.Version++
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	f.carts[cart.ID] = data
	return nil
}

func (f *fakeCartRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.carts, id)
	return nil
}

type fakeTxRepo struct {
	byCartID map[uuid.UUID]*entity.Transaction
	created  int
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{byCartID: map[uuid.UUID]*entity.Transaction{}}
}

func (f *fakeTxRepo) Create(_ context.Context, tx *entity.Transaction) error {
	if _, exists := f.byCartID[tx.CartID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	f.byCartID[tx.CartID] = tx
	f.created++
	return nil
}

func (f *fakeTxRepo) GetByCartID(_ context.Context, cartID uuid.UUID) (*entity.Transaction, error) {
	return f.byCartID[cartID], nil
}

func (f *fakeTxRepo) GetByNumber(_ context.Context, _ string, _ uuid.UUID, transactionNo int64) (*entity.Transaction, error) {
	for _, tx := range f.byCartID {
		if tx.TransactionNo == transactionNo {
			return tx, nil
		}
	}
	return nil, nil
}

func (f *fakeTxRepo) List(_ context.Context, _ *repository.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	return nil, 0, nil
}

type fakeCounterRepo struct {
	values map[string]int64
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{values: map[string]int64{}}
}

func (f *fakeCounterRepo) Next(_ context.Context, terminalID uuid.UUID, name string) (int64, error) {
	key := terminalID.String() + "/" + name
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCounterRepo) Seed(_ context.Context, terminalID uuid.UUID, names []string) error {
	for _, name := range names {
		f.values[terminalID.String()+"/"+name] = 0
	}
	return nil
}

func (f *fakeCounterRepo) Current(_ context.Context, terminalID uuid.UUID, name string) (int64, error) {
	return f.values[terminalID.String()+"/"+name], nil
}

type fakeItemRepo struct {
	items []entity.Item
}

func (f *fakeItemRepo) Create(_ context.Context, item *entity.Item) error {
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeItemRepo) GetByCode(_ context.Context, code string) (*entity.Item, error) {
	for i := range f.items {
		if f.items[i].Code == code {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

func (f *fakeItemRepo) List(_ context.Context) ([]entity.Item, error) {
	return f.items, nil
}

func (f *fakeItemRepo) Update(_ context.Context, _ *entity.Item) error { return nil }
func (f *fakeItemRepo) Delete(_ context.Context, _ uuid.UUID) error    { return nil }

type recordingPublisher struct {
	published []*entity.Transaction
	err       error
}

func (p *recordingPublisher) PublishTransaction(_ context.Context, tx *entity.Transaction) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, tx)
	return nil
}

type cartFixture struct {
	svc      *CartService
	cartRepo *fakeCartRepo
	txRepo   *fakeTxRepo
	pub      *recordingPublisher
	ctx      context.Context
	terminal uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	items := &fakeItemRepo{items: []entity.Item{
		{Code: "COFFEE", Name: "Coffee", Price: 100, TaxRate: 10, TaxMode: enum.TaxModeExclusive, RoundingMode: enum.RoundingModeDown},
		{Code: "BREAD", Name: "Bread", Price: 250, TaxRate: 10, TaxMode: enum.TaxModeInclusive, RoundingMode: enum.RoundingModeDown},
		{Code: "GIFT", Name: "Gift Card", Price: 500, TaxRate: 0, TaxMode: enum.TaxModeExempt},
	}}
	cartRepo := newFakeCartRepo()
	txRepo := newFakeTxRepo()
	pub := &recordingPublisher{}
	svc := NewCartService(cartRepo, txRepo, newFakeCounterRepo(), items,
		tax.NewRegistry(), payment.NewRegistry(), pub, receipt.NewBuilder("Test Store"))
	return &cartFixture{
		svc:      svc,
		cartRepo: cartRepo,
		txRepo:   txRepo,
		pub:      pub,
		ctx:      infraRepo.WithTenant(context.Background(), uuid.New()),
		terminal: uuid.New(),
	}
}

func (f *cartFixture) openCart(t *testing.T) *entity.Cart {
	t.Helper()
	cart, err := f.svc.CreateCart(f.ctx, &CreateCartInput{
		StoreCode:    "S001",
		TerminalID:   f.terminal,
		StaffID:      "staff-1",
		BusinessDate: "2026-08-25",
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	return cart
}

func TestCreateCartSnapshotsMasterData(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)

	if cart.Status != enum.CartStatusIdle {
		t.Errorf("status = %v, want Idle", cart.Status)
	}
	if len(cart.ItemSnapshot) != 3 {
		t.Errorf("snapshot size = %d, want 3", len(cart.ItemSnapshot))
	}
	if snap := cart.ItemSnapshot["COFFEE"]; snap.Price != 100 || snap.TaxRate != 10 {
		t.Errorf("snapshot COFFEE = %+v", snap)
	}
}

func TestAddItemTransitionsAndTotals(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)

	updated, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if updated.Status != enum.CartStatusEnteringItem {
		t.Errorf("status = %v, want EnteringItem", updated.Status)
	}
	if updated.SubtotalAmount != 100 {
		t.Errorf("subtotal = %v, want 100", updated.SubtotalAmount)
	}
	if updated.TaxAmount != 10 {
		t.Errorf("tax = %v, want 10", updated.TaxAmount)
	}
	if updated.TotalAmount != 110 {
		t.Errorf("total = %v, want 110 (exclusive tax added)", updated.TotalAmount)
	}
	if updated.BalanceAmount != 110 {
		t.Errorf("balance = %v, want 110", updated.BalanceAmount)
	}
}

func TestInclusiveTaxDoesNotInflateTotal(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)

	updated, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "BREAD", Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if updated.TotalAmount != 250 {
		t.Errorf("total = %v, want 250 (inclusive tax stays inside)", updated.TotalAmount)
	}
	if updated.TaxAmount != 22 {
		t.Errorf("tax = %v, want 22 (250*10/110 rounded down)", updated.TaxAmount)
	}
}

func TestRejectedOperationLeavesStateUnchanged(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}

	before := append([]byte(nil), f.cartRepo.carts[cart.ID]...)

	_, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "BREAD", Quantity: 1})
	if !errors.Is(err, apperror.ErrIllegalOperation) {
		t.Fatalf("err = %v, want ErrIllegalOperation", err)
	}

	after := f.cartRepo.carts[cart.ID]
	if string(before) != string(after) {
		t.Error("rejected operation must leave the persisted cart byte-for-byte unchanged")
	}
}

func TestRemoveItemSoftCancels(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 2}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	updated, err := f.svc.RemoveItem(f.ctx, cart.ID, 1)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}

	if len(updated.Items) != 1 {
		t.Fatalf("items = %d, want 1 retained for audit", len(updated.Items))
	}
	if !updated.Items[0].Cancelled {
		t.Error("line should be soft-cancelled")
	}
	if updated.SubtotalAmount != 0 || updated.TotalAmount != 0 {
		t.Errorf("totals = subtotal %v total %v, want 0", updated.SubtotalAmount, updated.TotalAmount)
	}
}

func TestBillRequiresZeroBalance(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}

	_, err := f.svc.Bill(f.ctx, cart.ID)
	if !errors.Is(err, apperror.ErrBalanceNotZero) {
		t.Fatalf("err = %v, want ErrBalanceNotZero", err)
	}
	if f.txRepo.created != 0 {
		t.Error("no transaction may be created before the balance is zero")
	}
}

func TestCancelPaymentRestoresBalance(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}
	if _, err := f.svc.AddPayment(f.ctx, cart.ID, &AddPaymentInput{MethodCode: "cash", Amount: 50, Deposit: 50}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	updated, err := f.svc.CancelPayment(f.ctx, cart.ID, 1)
	if err != nil {
		t.Fatalf("cancel payment: %v", err)
	}

	if !updated.Payments[0].Cancelled {
		t.Error("payment line should be soft-cancelled")
	}
	if updated.BalanceAmount != 110 {
		t.Errorf("balance = %v, want 110 after the payment is reversed", updated.BalanceAmount)
	}
	if updated.Status != enum.CartStatusPaying {
		t.Errorf("status = %v, want Paying", updated.Status)
	}
}

func TestBillCompletesAndPublishes(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}
	if _, err := f.svc.AddPayment(f.ctx, cart.ID, &AddPaymentInput{MethodCode: "cash", Amount: 110, Deposit: 200}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	tx, err := f.svc.Bill(f.ctx, cart.ID)
	if err != nil {
		t.Fatalf("bill: %v", err)
	}

	if tx.TransactionNo != 1 || tx.ReceiptNo != 1 {
		t.Errorf("numbers = tran %d receipt %d, want 1/1", tx.TransactionNo, tx.ReceiptNo)
	}
	if tx.Type != enum.TransactionTypeSale {
		t.Errorf("type = %v, want sale", tx.Type)
	}
	if tx.ChangeAmount != 90 {
		t.Errorf("change = %v, want 90", tx.ChangeAmount)
	}
	if tx.ReceiptText == "" || tx.JournalText == "" {
		t.Error("receipt and journal text must be rendered at completion")
	}
	if _, ok := f.cartRepo.carts[cart.ID]; ok {
		t.Error("cart should be retired after completion")
	}
	if len(f.pub.published) != 1 {
		t.Fatalf("published = %d, want 1", len(f.pub.published))
	}
}

func TestBillReplayReturnsExistingTransaction(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "GIFT", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}
	if _, err := f.svc.AddPayment(f.ctx, cart.ID, &AddPaymentInput{MethodCode: "cashless", Amount: 500}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	first, err := f.svc.Bill(f.ctx, cart.ID)
	if err != nil {
		t.Fatalf("first bill: %v", err)
	}
	second, err := f.svc.Bill(f.ctx, cart.ID)
	if err != nil {
		t.Fatalf("replayed bill: %v", err)
	}

	if second.TransactionNo != first.TransactionNo {
		t.Errorf("replay returned transaction %d, want %d", second.TransactionNo, first.TransactionNo)
	}
	if f.txRepo.created != 1 {
		t.Errorf("transactions created = %d, want 1", f.txRepo.created)
	}
}

func TestPublishFailureDoesNotFailCompletion(t *testing.T) {
	f := newCartFixture(t)
	f.pub.err = errors.New("broker down")
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "GIFT", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}
	if _, err := f.svc.AddPayment(f.ctx, cart.ID, &AddPaymentInput{MethodCode: "other", Amount: 500}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	if _, err := f.svc.Bill(f.ctx, cart.ID); err != nil {
		t.Fatalf("bill must succeed even when publish fails: %v", err)
	}
	if f.txRepo.created != 1 {
		t.Errorf("transactions created = %d, want 1", f.txRepo.created)
	}
}

func TestUpdateRetriesOnVersionConflict(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)

	f.cartRepo.conflictsLeft = 2
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); err != nil {
		t.Fatalf("add item should survive two conflicts: %v", err)
	}

	f.cartRepo.conflictsLeft = maxUpdateRetries
	_, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1})
	if !errors.Is(err, apperror.ErrStorageFailure) {
		t.Fatalf("err = %v, want ErrStorageFailure after retry exhaustion", err)
	}
}

func TestResumeReopensItemEntry(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}

	updated, err := f.svc.Resume(f.ctx, cart.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if updated.Status != enum.CartStatusEnteringItem {
		t.Errorf("status = %v, want EnteringItem", updated.Status)
	}

	if _, err := f.svc.AddItem(f.ctx, updated.ID, &AddItemInput{ItemCode: "BREAD", Quantity: 1}); err != nil {
		t.Errorf("item entry should be open again: %v", err)
	}
}

func TestCancelFromPaying(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.Subtotal(f.ctx, cart.ID); err != nil {
		t.Fatalf("subtotal: %v", err)
	}

	updated, err := f.svc.Cancel(f.ctx, cart.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != enum.CartStatusCancelled {
		t.Errorf("status = %v, want Cancelled", updated.Status)
	}

	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 1}); !errors.Is(err, apperror.ErrIllegalOperation) {
		t.Errorf("err = %v, want ErrIllegalOperation on a cancelled cart", err)
	}
}

func TestLineDiscountKeepsBalanceIdentity(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "GIFT", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	line := 1
	updated, err := f.svc.AddDiscount(f.ctx, cart.ID, &AddDiscountInput{LineNo: &line, Description: "Damaged", Amount: 50})
	if err != nil {
		t.Fatalf("add line discount: %v", err)
	}

	// The line discount nets into the line amount; it must not be reported a
	// second time through DiscountAmount.
	if updated.SubtotalAmount != 450 {
		t.Errorf("subtotal = %v, want 450", updated.SubtotalAmount)
	}
	if updated.DiscountAmount != 0 {
		t.Errorf("discount = %v, want 0 (line discount already in the line amount)", updated.DiscountAmount)
	}
	if updated.BalanceAmount != updated.SubtotalAmount-updated.DiscountAmount+updated.TaxAmount-updated.PaymentAmount {
		t.Errorf("balance %v breaks the identity: subtotal %v discount %v tax %v payments %v",
			updated.BalanceAmount, updated.SubtotalAmount, updated.DiscountAmount, updated.TaxAmount, updated.PaymentAmount)
	}
}

func TestLineAndCartDiscountsCombined(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 5}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	line := 1
	if _, err := f.svc.AddDiscount(f.ctx, cart.ID, &AddDiscountInput{LineNo: &line, Description: "Damaged", Amount: 50}); err != nil {
		t.Fatalf("add line discount: %v", err)
	}
	updated, err := f.svc.AddDiscount(f.ctx, cart.ID, &AddDiscountInput{Description: "Member", Amount: 100})
	if err != nil {
		t.Fatalf("add cart discount: %v", err)
	}

	// Line: 5 x 100 - 50 = 450; tax 10% exclusive on the net line, round down.
	if updated.SubtotalAmount != 450 {
		t.Errorf("subtotal = %v, want 450", updated.SubtotalAmount)
	}
	if updated.DiscountAmount != 100 {
		t.Errorf("discount = %v, want 100 (cart-level only)", updated.DiscountAmount)
	}
	if updated.TaxAmount != 45 {
		t.Errorf("tax = %v, want 45", updated.TaxAmount)
	}
	if updated.TotalAmount != 395 {
		t.Errorf("total = %v, want 395", updated.TotalAmount)
	}
	if updated.BalanceAmount != 395 {
		t.Errorf("balance = %v, want 395", updated.BalanceAmount)
	}
}

func TestCartRoundTripPreservesDocument(t *testing.T) {
	f := newCartFixture(t)
	cart := f.openCart(t)
	if _, err := f.svc.AddItem(f.ctx, cart.ID, &AddItemInput{ItemCode: "COFFEE", Quantity: 2}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.svc.AddDiscount(f.ctx, cart.ID, &AddDiscountInput{Description: "Member", Amount: 20}); err != nil {
		t.Fatalf("add discount: %v", err)
	}

	loaded, err := f.svc.GetCart(f.ctx, cart.ID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}

	if len(loaded.Items) != 1 || loaded.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", loaded.Items)
	}
	if len(loaded.CartDiscounts) != 1 || loaded.CartDiscounts[0].Amount != 20 {
		t.Errorf("discounts = %+v", loaded.CartDiscounts)
	}
	if loaded.TotalAmount != 200-20+20 {
		t.Errorf("total = %v, want 200 (subtotal 200, discount 20, tax 20)", loaded.TotalAmount)
	}
}
