package tax

import (
	"testing"

	"github.com/poscore/transaction-api/internal/domain/enum"
)

func TestExclusive(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		rate      float64
		rounding  enum.RoundingMode
		wantTax   float64
		wantTotal float64
	}{
		{"ten percent round down", 100, 10, enum.RoundingModeDown, 10, 110},
		{"fractional tax rounds down", 105, 8, enum.RoundingModeDown, 8, 113},
		{"fractional tax rounds up", 105, 8, enum.RoundingModeUp, 9, 114},
		{"half up rounds nearest", 105, 10, enum.RoundingModeHalfUp, 11, 116},
		{"zero rate", 100, 0, enum.RoundingModeDown, 0, 100},
	}

	s := exclusiveStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Calculate(tt.amount, tt.rate, tt.rounding)
			if got.TaxAmount != tt.wantTax {
				t.Errorf("tax = %v, want %v", got.TaxAmount, tt.wantTax)
			}
			if got.TotalAmount != tt.wantTotal {
				t.Errorf("total = %v, want %v", got.TotalAmount, tt.wantTotal)
			}
			if got.NetAmount != tt.amount {
				t.Errorf("net = %v, want %v", got.NetAmount, tt.amount)
			}
		})
	}
}

func TestInclusive(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		rate     float64
		rounding enum.RoundingMode
		wantNet  float64
		wantTax  float64
	}{
		{"ten percent round down", 100, 10, enum.RoundingModeDown, 91, 9},
		{"ten percent round up", 100, 10, enum.RoundingModeUp, 90, 10},
		{"half up", 100, 10, enum.RoundingModeHalfUp, 91, 9},
		{"zero rate", 100, 0, enum.RoundingModeDown, 100, 0},
	}

	s := inclusiveStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Calculate(tt.amount, tt.rate, tt.rounding)
			if got.NetAmount != tt.wantNet {
				t.Errorf("net = %v, want %v", got.NetAmount, tt.wantNet)
			}
			if got.TaxAmount != tt.wantTax {
				t.Errorf("tax = %v, want %v", got.TaxAmount, tt.wantTax)
			}
			if got.TotalAmount != tt.amount {
				t.Errorf("total = %v, want %v", got.TotalAmount, tt.amount)
			}
		})
	}
}

func TestExempt(t *testing.T) {
	got := exemptStrategy{}.Calculate(250, 10, enum.RoundingModeDown)
	if got.TaxAmount != 0 || got.TotalAmount != 250 || got.NetAmount != 250 {
		t.Errorf("exempt = %+v, want zero tax and unchanged amount", got)
	}
}

func TestRegistryUnknownMode(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ForMode(enum.TaxMode(99)); err == nil {
		t.Error("expected error for unknown tax mode")
	}
	for _, mode := range []enum.TaxMode{enum.TaxModeExclusive, enum.TaxModeInclusive, enum.TaxModeExempt} {
		if _, err := r.ForMode(mode); err != nil {
			t.Errorf("mode %v: unexpected error %v", mode, err)
		}
	}
}
