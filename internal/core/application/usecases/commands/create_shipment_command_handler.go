package commands

import (
	"context"
	"time"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/services"
)

// CreateShipmentCommandHandler books a new shipment under the next waybill number.
//
// The waybill sequence is locked for the rest of the transaction, so two
// concurrent submissions can never read the same "last" number.
type CreateShipmentCommandHandler struct {
	uowFactory UoWFactory
	sequencer  services.WaybillSequencer
	pricing    services.PricingCalculator
}

func NewCreateShipmentCommandHandler(
	uowFactory UoWFactory,
	sequencer services.WaybillSequencer,
	pricing services.PricingCalculator,
) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
		sequencer:  sequencer,
		pricing:    pricing,
	}
}

// Handle validates the actor, allocates the waybill number and persists the
// shipment with its items in one transaction.
func (h *CreateShipmentCommandHandler) Handle(ctx context.Context, cmd CreateShipmentCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err := uow.UserRepository().Get(ctx, cmd.ActorID()); err != nil {
		return nil, err
	}

	shipmentRepo := uow.ShipmentRepository()
	if err := shipmentRepo.LockWaybillSequence(ctx); err != nil {
		return nil, err
	}

	last, err := shipmentRepo.LastWaybillNumber(ctx)
	if err != nil {
		return nil, err
	}

	waybill, err := h.sequencer.Next(last)
	if err != nil {
		return nil, err
	}

	s, err := shipment.NewShipment(
		cmd.ShipmentID(),
		waybill,
		cmd.Details(),
		cmd.Items(),
		cmd.ActorID(),
		cmd.IsDraft(),
		h.pricing.Rate(),
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err = shipmentRepo.Add(ctx, s); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return s, nil
}
