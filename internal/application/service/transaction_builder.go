package service

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/pkg/receipt"
	"gorm.io/datatypes"
)

// buildTransaction freezes a finished cart into its immutable durable record.
// refNo links a void/return back to the transaction it reverses.
func buildTransaction(cart *entity.Cart, txType enum.TransactionType, transactionNo, receiptNo int64, refNo *int64, receipts *receipt.Builder) (*entity.Transaction, error) {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return nil, err
	}
	payments, err := json.Marshal(cart.Payments)
	if err != nil {
		return nil, err
	}
	taxes, err := json.Marshal(cart.Taxes)
	if err != nil {
		return nil, err
	}

	return &entity.Transaction{
		ID:               uuid.New(),
		TenantID:         cart.TenantID,
		StoreCode:        cart.StoreCode,
		TerminalID:       cart.TerminalID,
		TransactionNo:    transactionNo,
		ReceiptNo:        receiptNo,
		CartID:           cart.ID,
		Type:             txType,
		RefTransactionNo: refNo,
		BusinessDate:     cart.BusinessDate,
		StaffID:          cart.StaffID,
		SubtotalAmount:   cart.SubtotalAmount,
		DiscountAmount:   cart.DiscountAmount,
		TaxAmount:        cart.TaxAmount,
		TotalAmount:      cart.TotalAmount,
		DepositAmount:    cart.DepositAmount,
		ChangeAmount:     cart.ChangeAmount,
		Items:            datatypes.JSON(items),
		Payments:         datatypes.JSON(payments),
		Taxes:            datatypes.JSON(taxes),
		ReceiptText:      receipts.BuildReceipt(cart, txType, transactionNo, receiptNo),
		JournalText:      receipts.BuildJournal(cart, txType, transactionNo, receiptNo),
	}, nil
}
