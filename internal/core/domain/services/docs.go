// Package services provides domain services that hold configuration-dependent
// business rules for the shipment aggregate.
//
// The package includes:
//   - PricingCalculator: applies the configured VAT rate to shipment pricing
//   - WaybillSequencer: continues the waybill sequence under the configured prefix
//
// Both services are stateless apart from their configuration and are safe for
// concurrent use.
package services
