package commands

import (
	"errors"
	"fmt"
	"slices"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrAmendShipmentCommandIsNotConstructed = errors.New(
		"AmendShipmentCommand must be created via NewAmendShipmentCommand constructor",
	)
)

// AmendShipmentCommand replaces the editable fields and the item list of a shipment.
// expectedVersion, when positive, must match the stored version; it lets a
// client detect that someone else changed the shipment since it was displayed.
type AmendShipmentCommand struct { //nolint:recvcheck //using for validation
	shipmentID      kernel.UUID
	actorID         kernel.UUID
	details         shipment.Details
	items           []*shipment.Item
	expectedVersion int

	guard guard.ConstructorGuard
}

func NewAmendShipmentCommand(
	shipmentID kernel.UUID,
	actorID kernel.UUID,
	details shipment.Details,
	items []ItemInput,
	expectedVersion int,
) (AmendShipmentCommand, error) {
	cmd := AmendShipmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	var versionErr error
	if expectedVersion < 0 {
		versionErr = errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", expectedVersion))
	}
	cmd.expectedVersion = expectedVersion

	if err := errors.Join(
		shipmentID.Validate(),
		actorID.Validate(),
		details.Validate(),
		versionErr,
	); err != nil {
		return AmendShipmentCommand{}, err
	}

	built, err := buildItems(items, true)
	if err != nil {
		return AmendShipmentCommand{}, err
	}

	cmd.shipmentID = shipmentID
	cmd.actorID = actorID
	cmd.details = details
	cmd.items = built

	return cmd, nil
}

func (c AmendShipmentCommand) Validate() error {
	return c.guard.Validate(ErrAmendShipmentCommandIsNotConstructed)
}

func (c AmendShipmentCommand) ShipmentID() kernel.UUID   { return c.shipmentID }
func (c AmendShipmentCommand) ActorID() kernel.UUID      { return c.actorID }
func (c AmendShipmentCommand) Details() shipment.Details { return c.details }
func (c AmendShipmentCommand) Items() []*shipment.Item   { return slices.Clone(c.items) }
func (c AmendShipmentCommand) ExpectedVersion() int      { return c.expectedVersion }
