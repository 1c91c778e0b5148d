package commands

import (
	"errors"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrRequestTransitionCommandIsNotConstructed = errors.New(
		"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
	)
)

// RequestTransitionCommand asks to move a shipment to a new status on behalf
// of an actor.
//
// Example:
//
//	target, err := shipment.ParseStatus("in_transit")
//	cmd, err := NewRequestTransitionCommand(shipmentID, target, actor.ID())
//	result, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, shipment.ErrInvalidTransition) {
//	    // show the statuses reachable from the current one
//	}
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	shipmentID kernel.UUID
	target     shipment.Status
	actorID    kernel.UUID

	guard guard.ConstructorGuard
}

// NewRequestTransitionCommand requires a valid shipment, target status and actor.
func NewRequestTransitionCommand(shipmentID kernel.UUID, target shipment.Status, actorID kernel.UUID) (RequestTransitionCommand, error) {
	cmd := RequestTransitionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setShipmentID(shipmentID),
		cmd.setTarget(target),
		cmd.setActorID(actorID),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

func (c RequestTransitionCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c RequestTransitionCommand) Target() shipment.Status { return c.target }
func (c RequestTransitionCommand) ActorID() kernel.UUID    { return c.actorID }

func (c *RequestTransitionCommand) setShipmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.shipmentID = id
	return nil
}

func (c *RequestTransitionCommand) setTarget(target shipment.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}

func (c *RequestTransitionCommand) setActorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.actorID = id
	return nil
}
