package commands

import (
	"context"
	"fmt"
	"log/slog"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/services"
	"exportdocs/internal/core/ports"
)

// AmendShipmentCommandHandler edits a shipment. Only superusers may amend.
// Images of items dropped by the amendment are deleted from storage once the
// change is committed.
type AmendShipmentCommandHandler struct {
	uowFactory UoWFactory
	storage    ports.ImageStorage
	pricing    services.PricingCalculator
	logger     *slog.Logger
}

func NewAmendShipmentCommandHandler(
	uowFactory UoWFactory,
	storage ports.ImageStorage,
	pricing services.PricingCalculator,
	logger *slog.Logger,
) AmendShipmentCommandHandler {
	return AmendShipmentCommandHandler{
		uowFactory: uowFactory,
		storage:    storage,
		pricing:    pricing,
		logger:     logger.With("component", "amend_shipment"),
	}
}

func (h *AmendShipmentCommandHandler) Handle(ctx context.Context, cmd AmendShipmentCommand) (*shipment.Shipment, error) {
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

	actor, err := uow.UserRepository().Get(ctx, cmd.ActorID())
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser() {
		return nil, fmt.Errorf("%w: amending shipments requires a superuser", ErrActorIsNotAuthorized)
	}

	shipmentRepo := uow.ShipmentRepository()
	s, err := shipmentRepo.Get(ctx, cmd.ShipmentID())
	if err != nil {
		return nil, err
	}
	if v := cmd.ExpectedVersion(); v > 0 && v != s.Version() {
		return nil, fmt.Errorf("%w: expected version %d, found %d", ports.ErrConcurrentModification, v, s.Version())
	}

	removed, err := s.Amend(cmd.Details(), cmd.Items(), h.pricing.Rate())
	if err != nil {
		return nil, err
	}

	if err = shipmentRepo.Update(ctx, s); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	deleteFiles(ctx, h.storage, h.logger, removed)
	return s, nil
}

// deleteFiles removes files that committed data no longer references.
// Failures leave orphaned files behind and are only logged.
func deleteFiles(ctx context.Context, storage ports.ImageStorage, logger *slog.Logger, files []shipment.ImageRef) {
	for _, f := range files {
		if err := storage.Delete(ctx, f.FileID()); err != nil {
			logger.WarnContext(ctx, "failed to delete stored file", "file_id", f.FileID(), "error", err)
		}
	}
}
