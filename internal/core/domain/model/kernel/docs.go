// Package kernel provides the value objects shared by the shipment and user
// aggregates.
//
// The package includes:
//   - UUID: an identifier whose zero value is invalid
//   - Money: a non-negative decimal amount used by pricing components and item values
//   - Contact: the sender or receiver block printed on export documents
//   - Destination: where a shipment is delivered
//
// All value objects are immutable and must be created through their
// constructors; the zero values fail validation.
package kernel
