package tax

import (
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Result is the tax outcome for one line amount. NetAmount is the amount
// excluding tax, TotalAmount the amount including tax.
type Result struct {
	NetAmount   float64
	TaxAmount   float64
	TotalAmount float64
}

// Strategy computes tax for one line amount. Rounding is applied exactly once
// here; callers aggregate the results without rounding again.
type Strategy interface {
	Calculate(amount, rate float64, rounding enum.RoundingMode) Result
}

// Registry maps a tax mode to its strategy. The set is fixed at compile time;
// new modes are added by extending the table, not by runtime loading.
type Registry struct {
	strategies map[enum.TaxMode]Strategy
}

// NewRegistry returns a registry with the built-in exclusive, inclusive and
// exempt strategies registered.
func NewRegistry() *Registry {
	return &Registry{
		strategies: map[enum.TaxMode]Strategy{
			enum.TaxModeExclusive: exclusiveStrategy{},
			enum.TaxModeInclusive: inclusiveStrategy{},
			enum.TaxModeExempt:    exemptStrategy{},
		},
	}
}

// ForMode returns the strategy for the given tax mode
func (r *Registry) ForMode(mode enum.TaxMode) (Strategy, error) {
	s, ok := r.strategies[mode]
	if !ok {
		return nil, apperror.NewBadRequestError("Unsupported tax mode")
	}
	return s, nil
}

func round(d decimal.Decimal, mode enum.RoundingMode) decimal.Decimal {
	switch mode {
	case enum.RoundingModeUp:
		return d.Ceil()
	case enum.RoundingModeHalfUp:
		return d.Round(0)
	default:
		return d.Floor()
	}
}

// exclusiveStrategy adds tax on top: tax = round(amount * rate / 100).
type exclusiveStrategy struct{}

func (exclusiveStrategy) Calculate(amount, rate float64, rounding enum.RoundingMode) Result {
	amt := decimal.NewFromFloat(amount)
	tax := round(amt.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100)), rounding)
	taxF, _ := tax.Float64()
	totalF, _ := amt.Add(tax).Float64()
	return Result{NetAmount: amount, TaxAmount: taxF, TotalAmount: totalF}
}

// inclusiveStrategy carves tax out of a gross amount. The rounded value is the
// tax portion, amount * rate / (100 + rate); the net is derived from it so the
// parts always sum back to the gross.
type inclusiveStrategy struct{}

func (inclusiveStrategy) Calculate(amount, rate float64, rounding enum.RoundingMode) Result {
	amt := decimal.NewFromFloat(amount)
	r := decimal.NewFromFloat(rate)
	tax := round(amt.Mul(r).Div(decimal.NewFromInt(100).Add(r)), rounding)
	taxF, _ := tax.Float64()
	netF, _ := amt.Sub(tax).Float64()
	return Result{NetAmount: netF, TaxAmount: taxF, TotalAmount: amount}
}

type exemptStrategy struct{}

func (exemptStrategy) Calculate(amount, _ float64, _ enum.RoundingMode) Result {
	return Result{NetAmount: amount, TaxAmount: 0, TotalAmount: amount}
}
