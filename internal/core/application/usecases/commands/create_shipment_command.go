package commands

import (
	"errors"
	"slices"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrCreateShipmentCommandIsNotConstructed = errors.New(
		"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
	)
)

// CreateShipmentCommand represents a submitted (or drafted) export shipment.
// All form fields arrive already typed: contacts, destination, pricing and
// items are validated once here, before any transaction starts.
//
// Example:
//
//	cmd, err := NewCreateShipmentCommand(kernel.NewUUID(), actor.ID(), details, items, false)
//	if err != nil {
//	    return fmt.Errorf("invalid shipment data: %w", err)
//	}
//
//	s, err := handler.Handle(ctx, cmd)
//	fmt.Printf("Shipment %s booked", s.Waybill())
type CreateShipmentCommand struct { //nolint:recvcheck //using for validation
	shipmentID kernel.UUID
	actorID    kernel.UUID
	details    shipment.Details
	items      []*shipment.Item
	draft      bool

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand validates every field and reports all problems at once.
func NewCreateShipmentCommand(
	shipmentID kernel.UUID,
	actorID kernel.UUID,
	details shipment.Details,
	items []ItemInput,
	draft bool,
) (CreateShipmentCommand, error) {
	cmd := CreateShipmentCommand{
		draft: draft,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setShipmentID(shipmentID),
		cmd.setActorID(actorID),
		cmd.setDetails(details),
		cmd.setItems(items),
	); err != nil {
		return CreateShipmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

func (c CreateShipmentCommand) ShipmentID() kernel.UUID   { return c.shipmentID }
func (c CreateShipmentCommand) ActorID() kernel.UUID      { return c.actorID }
func (c CreateShipmentCommand) Details() shipment.Details { return c.details }
func (c CreateShipmentCommand) Items() []*shipment.Item   { return slices.Clone(c.items) }
func (c CreateShipmentCommand) IsDraft() bool             { return c.draft }

func (c *CreateShipmentCommand) setShipmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.shipmentID = id
	return nil
}

func (c *CreateShipmentCommand) setActorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.actorID = id
	return nil
}

func (c *CreateShipmentCommand) setDetails(details shipment.Details) error {
	if err := details.Validate(); err != nil {
		return err
	}
	c.details = details
	return nil
}

func (c *CreateShipmentCommand) setItems(inputs []ItemInput) error {
	items, err := buildItems(inputs, false)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}
