package queries

import (
	"errors"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrGetStatusHistoryQueryIsNotConstructed = errors.New(
		"GetStatusHistoryQuery must be created via NewGetStatusHistoryQuery constructor",
	)
)

// GetStatusHistoryQuery reads the transition ledger of one shipment in the
// order the transitions happened.
type GetStatusHistoryQuery struct {
	shipmentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetStatusHistoryQuery(shipmentID kernel.UUID) (GetStatusHistoryQuery, error) {
	if err := shipmentID.Validate(); err != nil {
		return GetStatusHistoryQuery{}, err
	}
	return GetStatusHistoryQuery{shipmentID: shipmentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetStatusHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusHistoryQueryIsNotConstructed)
}

func (q GetStatusHistoryQuery) ShipmentID() kernel.UUID { return q.shipmentID }

// StatusHistoryView carries the ledger and whether it replays to the
// shipment's current status. Consistent is false when an entry skips an edge
// of the transition table or the replay ends elsewhere.
type StatusHistoryView struct {
	ShipmentID    kernel.UUID
	Waybill       string
	CurrentStatus shipment.Status
	Entries       []StatusHistoryEntry
	Consistent    bool
}

type StatusHistoryEntry struct {
	ID            kernel.UUID
	OldStatus     shipment.Status
	NewStatus     shipment.Status
	ChangedBy     kernel.UUID
	ChangedByName string
	ChangedAt     time.Time
}
