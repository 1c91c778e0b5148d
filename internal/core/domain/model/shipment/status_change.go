package shipment

import (
	"errors"
	"fmt"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
)

// ErrHistoryIsInconsistent is returned when a ledger does not replay as a
// legal path through the transition table.
var ErrHistoryIsInconsistent = errors.New("status history is inconsistent")

// StatusChange is one immutable entry of a shipment's status ledger.
// Entries are created only by Shipment.RequestTransition and never updated.
type StatusChange struct {
	id         kernel.UUID
	shipmentID kernel.UUID
	oldStatus  Status
	newStatus  Status
	changedBy  kernel.UUID
	changedAt  time.Time
}

func newStatusChange(shipmentID kernel.UUID, from, to Status, changedBy kernel.UUID, at time.Time) StatusChange {
	return StatusChange{
		id:         kernel.NewUUID(),
		shipmentID: shipmentID,
		oldStatus:  from,
		newStatus:  to,
		changedBy:  changedBy,
		changedAt:  at.UTC(),
	}
}

// RestoreStatusChange rebuilds a ledger entry read from storage.
// Statuses are validated but the edge is not: ReplayHistory checks that.
func RestoreStatusChange(
	id, shipmentID kernel.UUID,
	oldStatus, newStatus Status,
	changedBy kernel.UUID,
	changedAt time.Time,
) (StatusChange, error) {
	if err := errors.Join(
		id.Validate(),
		shipmentID.Validate(),
		oldStatus.Validate(),
		newStatus.Validate(),
		changedBy.Validate(),
	); err != nil {
		return StatusChange{}, err
	}
	return StatusChange{
		id:         id,
		shipmentID: shipmentID,
		oldStatus:  oldStatus,
		newStatus:  newStatus,
		changedBy:  changedBy,
		changedAt:  changedAt,
	}, nil
}

func (c StatusChange) ID() kernel.UUID         { return c.id }
func (c StatusChange) ShipmentID() kernel.UUID { return c.shipmentID }
func (c StatusChange) OldStatus() Status       { return c.oldStatus }
func (c StatusChange) NewStatus() Status       { return c.newStatus }
func (c StatusChange) ChangedBy() kernel.UUID  { return c.changedBy }
func (c StatusChange) ChangedAt() time.Time    { return c.changedAt }

// ReplayHistory walks entries (ordered by ChangedAt) starting from initial and
// returns the status they lead to. Every entry must start where the previous
// one ended and follow an edge of the transition table.
func ReplayHistory(initial Status, entries []StatusChange) (Status, error) {
	if !initial.IsInitial() {
		return Unknown, fmt.Errorf("%w: %s is not an initial status", ErrHistoryIsInconsistent, initial)
	}

	current := initial
	for i, entry := range entries {
		if entry.oldStatus != current {
			return Unknown, fmt.Errorf("%w: entry %d starts at %s but shipment was %s",
				ErrHistoryIsInconsistent, i, entry.oldStatus, current)
		}
		if !current.CanTransitionTo(entry.newStatus) {
			return Unknown, fmt.Errorf("%w: entry %d moves %s to %s",
				ErrHistoryIsInconsistent, i, entry.oldStatus, entry.newStatus)
		}
		if i > 0 && entry.changedAt.Before(entries[i-1].changedAt) {
			return Unknown, fmt.Errorf("%w: entry %d is out of order", ErrHistoryIsInconsistent, i)
		}
		current = entry.newStatus
	}
	return current, nil
}

// StatusChangedEvent is published after a transition has been committed.
type StatusChangedEvent struct {
	EventID    kernel.UUID
	ShipmentID kernel.UUID
	Waybill    string
	OldStatus  Status
	NewStatus  Status
	ChangedBy  kernel.UUID
	ChangedAt  time.Time
}
