package receipt

import (
	"fmt"
	"strings"

	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/enum"
)

const lineWidth = 40

// Builder formats receipt and journal text for a finished cart. The output is
// plain fixed-width text; rendering to ESC/POS or PDF is the journal
// collaborator's concern.
type Builder struct {
	StoreName string
}

// NewBuilder creates a receipt builder
func NewBuilder(storeName string) *Builder {
	return &Builder{StoreName: storeName}
}

// BuildReceipt renders the customer-facing receipt text
func (b *Builder) BuildReceipt(cart *entity.Cart, txType enum.TransactionType, transactionNo, receiptNo int64) string {
	var sb strings.Builder

	writeCentered(&sb, b.StoreName)
	writeCentered(&sb, typeLabel(txType))
	sb.WriteString(fmt.Sprintf("Date: %s\n", cart.BusinessDate))
	sb.WriteString(fmt.Sprintf("Tran#: %d  Receipt#: %d\n", transactionNo, receiptNo))
	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")

	for _, item := range cart.Items {
		if item.Cancelled {
			continue
		}
		sb.WriteString(item.ItemName + "\n")
		sb.WriteString(padAmount(fmt.Sprintf("  %d x %s", item.Quantity, money(item.UnitPrice)), money(item.Amount())))
		for _, d := range item.Discounts {
			sb.WriteString(padAmount("  "+d.Description, "-"+money(d.Amount)))
		}
	}
	for _, d := range cart.CartDiscounts {
		sb.WriteString(padAmount(d.Description, "-"+money(d.Amount)))
	}

	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")
	sb.WriteString(padAmount("Subtotal", money(cart.SubtotalAmount)))
	for _, t := range cart.Taxes {
		label := fmt.Sprintf("Tax %s %.0f%%", strings.ToLower(t.Mode.String()), t.Rate)
		sb.WriteString(padAmount(label, money(t.TaxAmount)))
	}
	sb.WriteString(padAmount("Total", money(cart.TotalAmount)))
	for _, p := range cart.Payments {
		if p.Cancelled {
			continue
		}
		sb.WriteString(padAmount(p.MethodCode, money(p.Deposit)))
	}
	if cart.ChangeAmount > 0 {
		sb.WriteString(padAmount("Change", money(cart.ChangeAmount)))
	}

	return sb.String()
}

// BuildJournal renders the journal text: the receipt plus the audit lines the
// electronic journal keeps (cancelled lines included)
func (b *Builder) BuildJournal(cart *entity.Cart, txType enum.TransactionType, transactionNo, receiptNo int64) string {
	var sb strings.Builder
	sb.WriteString(b.BuildReceipt(cart, txType, transactionNo, receiptNo))

	cancelled := 0
	for _, item := range cart.Items {
		if item.Cancelled {
			cancelled++
		}
	}
	if cancelled > 0 {
		sb.WriteString(strings.Repeat("-", lineWidth) + "\n")
		sb.WriteString(fmt.Sprintf("Cancelled lines: %d\n", cancelled))
		for _, item := range cart.Items {
			if !item.Cancelled {
				continue
			}
			sb.WriteString(padAmount("  [C] "+item.ItemName, money(item.UnitPrice*float64(item.Quantity))))
		}
	}
	sb.WriteString(fmt.Sprintf("Staff: %s  Cart: %s\n", cart.StaffID, cart.ID))

	return sb.String()
}

func typeLabel(t enum.TransactionType) string {
	switch t {
	case enum.TransactionTypeVoid:
		return "*** VOID ***"
	case enum.TransactionTypeReturn:
		return "*** RETURN ***"
	default:
		return "RECEIPT"
	}
}

func money(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func padAmount(label, amount string) string {
	pad := lineWidth - len(label) - len(amount)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + amount + "\n"
}

func writeCentered(sb *strings.Builder, s string) {
	if len(s) >= lineWidth {
		sb.WriteString(s + "\n")
		return
	}
	pad := (lineWidth - len(s)) / 2
	sb.WriteString(strings.Repeat(" ", pad) + s + "\n")
}
