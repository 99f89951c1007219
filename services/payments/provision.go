package payments

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxChargeCents is the largest amount Stripe accepts for a single charge.
const MaxChargeCents = 99_999_999

// Provision is the platform commission owed for a quote.
type Provision struct {
	Amount decimal.Decimal
	Cents  int64
	Rate   decimal.Decimal
}

// AmountFloat returns the commission in major units.
func (p Provision) AmountFloat() float64 {
	f, _ := p.Amount.Float64()
	return f
}

// RateFloat returns the commission rate.
func (p Provision) RateFloat() float64 {
	f, _ := p.Rate.Float64()
	return f
}

// ComputeProvision returns round(total × rate × 100) minor units. Rounding is
// half away from zero.
func ComputeProvision(total, rate float64) (Provision, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Provision{}, fmt.Errorf("invalid amount %v or rate %v", total, rate)
	}
	t := decimal.NewFromFloat(total)
	r := decimal.NewFromFloat(rate)
	if !t.IsPositive() {
		return Provision{}, fmt.Errorf("total amount must be positive, got %s", t)
	}
	if !r.IsPositive() || r.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Provision{}, fmt.Errorf("provision rate must be between 0 and 1, got %s", r)
	}

	cents := t.Mul(r).Mul(decimal.NewFromInt(100)).Round(0)
	if !cents.IsPositive() {
		return Provision{}, fmt.Errorf("provision for %s rounds to zero", t)
	}
	if cents.GreaterThan(decimal.NewFromInt(MaxChargeCents)) {
		return Provision{}, fmt.Errorf("provision of %s minor units exceeds the maximum charge", cents)
	}
	return Provision{
		Amount: cents.Shift(-2),
		Cents:  cents.IntPart(),
		Rate:   r,
	}, nil
}
