package shipment

import (
	"fmt"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DefaultVATRate is 7%.
var DefaultVATRate = VATRate{rate: decimal.RequireFromString("0.07")}

// VATRate is the fraction of the subtotal charged as VAT, within [0, 1].
// The zero value is a 0% rate.
type VATRate struct {
	rate decimal.Decimal
}

func NewVATRate(rate decimal.Decimal) (VATRate, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return VATRate{}, errs.NewValueIsOutOfRangeError("vat rate", rate.String(), 0, 1)
	}
	return VATRate{rate: rate}, nil
}

// VATRateFromFloat converts a configured rate such as 0.07.
func VATRateFromFloat(f float64) (VATRate, error) {
	return NewVATRate(decimal.NewFromFloat(f))
}

func (r VATRate) Decimal() decimal.Decimal {
	return r.rate
}

// String formats the rate as a percentage, e.g. "7%".
func (r VATRate) String() string {
	return fmt.Sprintf("%s%%", r.rate.Mul(decimal.NewFromInt(100)).String())
}

// Pricing holds the six independent charges of a shipment.
// A component that was never set is zero.
type Pricing struct {
	freight           kernel.Money
	additionalCharges kernel.Money
	pickupCharge      kernel.Money
	handlingFees      kernel.Money
	crating           kernel.Money
	insuranceCharge   kernel.Money
}

func NewPricing(freight, additionalCharges, pickupCharge, handlingFees, crating, insuranceCharge kernel.Money) Pricing {
	return Pricing{
		freight:           freight,
		additionalCharges: additionalCharges,
		pickupCharge:      pickupCharge,
		handlingFees:      handlingFees,
		crating:           crating,
		insuranceCharge:   insuranceCharge,
	}
}

func (p Pricing) Freight() kernel.Money           { return p.freight }
func (p Pricing) AdditionalCharges() kernel.Money { return p.additionalCharges }
func (p Pricing) PickupCharge() kernel.Money      { return p.pickupCharge }
func (p Pricing) HandlingFees() kernel.Money      { return p.handlingFees }
func (p Pricing) Crating() kernel.Money           { return p.crating }
func (p Pricing) InsuranceCharge() kernel.Money   { return p.insuranceCharge }

// Subtotal is the exact sum of the six components.
func (p Pricing) Subtotal() kernel.Money {
	return p.freight.
		Add(p.additionalCharges).
		Add(p.pickupCharge).
		Add(p.handlingFees).
		Add(p.crating).
		Add(p.insuranceCharge)
}

// Totals computes subtotal, VAT and total for rate.
// Amounts are exact; rounding to cents happens only when formatting.
func (p Pricing) Totals(rate VATRate) Totals {
	subtotal := p.Subtotal()
	vat := subtotal.Mul(rate.rate)
	return Totals{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    subtotal.Add(vat),
	}
}

// Totals is the denormalized price summary printed on documents.
type Totals struct {
	Subtotal kernel.Money
	VAT      kernel.Money
	Total    kernel.Money
}
