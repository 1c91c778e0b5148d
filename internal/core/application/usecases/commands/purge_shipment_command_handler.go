package commands

import (
	"context"
	"fmt"
	"log/slog"

	"exportdocs/internal/core/ports"
)

// PurgeShipmentCommandHandler deletes a shipment. Only superusers may purge.
type PurgeShipmentCommandHandler struct {
	uowFactory UoWFactory
	storage    ports.ImageStorage
	logger     *slog.Logger
}

func NewPurgeShipmentCommandHandler(uowFactory UoWFactory, storage ports.ImageStorage, logger *slog.Logger) PurgeShipmentCommandHandler {
	return PurgeShipmentCommandHandler{
		uowFactory: uowFactory,
		storage:    storage,
		logger:     logger.With("component", "purge_shipment"),
	}
}

// Handle deletes the rows in one transaction and the stored files after commit.
func (h *PurgeShipmentCommandHandler) Handle(ctx context.Context, cmd PurgeShipmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	actor, err := uow.UserRepository().Get(ctx, cmd.ActorID())
	if err != nil {
		return err
	}
	if !actor.IsSuperuser() {
		return fmt.Errorf("%w: purging shipments requires a superuser", ErrActorIsNotAuthorized)
	}

	shipmentRepo := uow.ShipmentRepository()
	s, err := shipmentRepo.Get(ctx, cmd.ShipmentID())
	if err != nil {
		return err
	}
	files := s.StoredFiles()

	if err = shipmentRepo.Delete(ctx, s.ID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	deleteFiles(ctx, h.storage, h.logger, files)
	h.logger.InfoContext(ctx, "shipment purged", "shipment_id", s.ID().String(), "waybill", s.Waybill().String())
	return nil
}
