package commands

import (
	"context"
	"log/slog"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"
)

// AttachItemImageCommandHandler stores an image and links it to a line item.
//
// The file is written before the transaction starts and removed again if the
// link cannot be committed; the image it replaces is removed after commit.
type AttachItemImageCommandHandler struct {
	uowFactory UoWFactory
	storage    ports.ImageStorage
	logger     *slog.Logger
}

func NewAttachItemImageCommandHandler(uowFactory UoWFactory, storage ports.ImageStorage, logger *slog.Logger) AttachItemImageCommandHandler {
	return AttachItemImageCommandHandler{
		uowFactory: uowFactory,
		storage:    storage,
		logger:     logger.With("component", "attach_item_image"),
	}
}

func (h *AttachItemImageCommandHandler) Handle(ctx context.Context, cmd AttachItemImageCommand) (shipment.ImageRef, error) {
	if err := cmd.Validate(); err != nil {
		return shipment.ImageRef{}, err
	}

	stored, err := h.storage.Store(ctx, cmd.Filename(), cmd.ContentType(), cmd.Content())
	if err != nil {
		return shipment.ImageRef{}, err
	}
	ref, err := shipment.NewImageRef(stored.ID, stored.Filename)
	if err != nil {
		return shipment.ImageRef{}, err
	}

	previous, err := h.link(ctx, cmd, ref)
	if err != nil {
		deleteFiles(ctx, h.storage, h.logger, []shipment.ImageRef{ref})
		return shipment.ImageRef{}, err
	}

	if previous != nil {
		deleteFiles(ctx, h.storage, h.logger, []shipment.ImageRef{*previous})
	}
	return ref, nil
}

func (h *AttachItemImageCommandHandler) link(ctx context.Context, cmd AttachItemImageCommand, ref shipment.ImageRef) (*shipment.ImageRef, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shipmentRepo := uow.ShipmentRepository()
	s, err := shipmentRepo.Get(ctx, cmd.ShipmentID())
	if err != nil {
		return nil, err
	}

	previous, err := s.AttachItemImage(cmd.ItemID(), ref)
	if err != nil {
		return nil, err
	}

	if err = shipmentRepo.Update(ctx, s); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return previous, nil
}
