package services

import (
	"exportdocs/internal/core/domain/model/shipment"
)

// PricingCalculator computes document totals with the configured VAT rate.
//
// Example usage:
//
//	calc := services.NewPricingCalculator(rate)
//	totals, err := calc.Recompute(s)
//	fmt.Println(totals.Subtotal, totals.VAT, totals.Total)
type PricingCalculator struct {
	rate shipment.VATRate
}

func NewPricingCalculator(rate shipment.VATRate) PricingCalculator {
	return PricingCalculator{rate: rate}
}

// Rate returns the configured VAT rate.
func (c PricingCalculator) Rate() shipment.VATRate {
	return c.rate
}

// Quote computes totals for pricing that is not attached to a shipment yet.
func (c PricingCalculator) Quote(pricing shipment.Pricing) shipment.Totals {
	return pricing.Totals(c.rate)
}

// Recompute refreshes and returns the cached totals of s.
func (c PricingCalculator) Recompute(s *shipment.Shipment) (shipment.Totals, error) {
	if err := s.Validate(); err != nil {
		return shipment.Totals{}, err
	}
	return s.RecomputeTotals(c.rate), nil
}
