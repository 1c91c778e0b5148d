package commands

import (
	"errors"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrPurgeShipmentCommandIsNotConstructed = errors.New(
		"PurgeShipmentCommand must be created via NewPurgeShipmentCommand constructor",
	)
)

// PurgeShipmentCommand permanently removes a shipment, its items, its ledger
// and its stored files.
type PurgeShipmentCommand struct { //nolint:recvcheck //using for validation
	shipmentID kernel.UUID
	actorID    kernel.UUID

	guard guard.ConstructorGuard
}

func NewPurgeShipmentCommand(shipmentID, actorID kernel.UUID) (PurgeShipmentCommand, error) {
	if err := errors.Join(shipmentID.Validate(), actorID.Validate()); err != nil {
		return PurgeShipmentCommand{}, err
	}
	return PurgeShipmentCommand{
		shipmentID: shipmentID,
		actorID:    actorID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c PurgeShipmentCommand) Validate() error {
	return c.guard.Validate(ErrPurgeShipmentCommandIsNotConstructed)
}

func (c PurgeShipmentCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c PurgeShipmentCommand) ActorID() kernel.UUID    { return c.actorID }
