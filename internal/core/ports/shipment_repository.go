package ports

import (
	"context"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment aggregates,
// their items and their status ledger.
type ShipmentRepository interface {
	// Add persists a new shipment with its items.
	// Returns ErrDuplicateWaybill when the waybill number is taken.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update persists changes guarded by the aggregate's version: the row is
	// written only if its version still matches, items are replaced and
	// pending ledger entries are appended in the same transaction.
	// Returns ErrConcurrentModification when the version no longer matches.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	// Get retrieves a shipment with its items by identifier.
	Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)

	// GetByWaybill retrieves a shipment with its items by waybill number.
	GetByWaybill(ctx context.Context, waybill string) (*shipment.Shipment, error)

	// Delete purges a shipment; items and ledger entries go with it.
	Delete(ctx context.Context, id kernel.UUID) error

	// LockWaybillSequence serializes waybill allocation until the surrounding
	// transaction ends.
	LockWaybillSequence(ctx context.Context) error

	// LastWaybillNumber returns the waybill of the most recently created
	// shipment, or nil when there is none.
	LastWaybillNumber(ctx context.Context) (*shipment.WaybillNumber, error)

	// History returns the ledger of a shipment ordered by changed_at.
	History(ctx context.Context, id kernel.UUID) ([]shipment.StatusChange, error)
}
