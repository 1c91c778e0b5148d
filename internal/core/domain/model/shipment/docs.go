// Package shipment provides the Shipment aggregate root for export
// documentation: who sends what to whom, for how much, and where it is in the
// delivery lifecycle.
//
// The package includes:
//   - Shipment: the aggregate root owning items, pricing and the status ledger
//   - Status: a closed enumeration with a fixed transition table
//   - StatusChange: an immutable ledger entry appended on every accepted transition
//   - WaybillNumber: the human-readable sequential identifier (e.g. EX000042)
//   - Pricing, VATRate and Totals: subtotal/VAT/total aggregation
//   - Item: a line item with an optional stored image
//
// Key business rules:
//   - Status transitions follow the table:
//     saved -> pending | cancelled
//     pending -> confirmed | cancelled
//     confirmed -> processing | cancelled
//     processing -> in_transit | cancelled
//     in_transit -> delivered | cancelled
//     delivered and cancelled are terminal
//   - A rejected transition mutates nothing and appends nothing
//   - Totals are recomputed whenever pricing changes; they are never trusted from storage
//   - Delivered or cancelled shipments cannot be amended
package shipment
