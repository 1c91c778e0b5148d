package commands

import (
	"bytes"
	"context"
	"log/slog"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"
)

// GenerateQRCodeCommandHandler encodes the shipment's QR payload, stores the
// PNG and links it to the shipment.
type GenerateQRCodeCommandHandler struct {
	uowFactory UoWFactory
	encoder    ports.QREncoder
	storage    ports.ImageStorage
	logger     *slog.Logger
}

func NewGenerateQRCodeCommandHandler(
	uowFactory UoWFactory,
	encoder ports.QREncoder,
	storage ports.ImageStorage,
	logger *slog.Logger,
) GenerateQRCodeCommandHandler {
	return GenerateQRCodeCommandHandler{
		uowFactory: uowFactory,
		encoder:    encoder,
		storage:    storage,
		logger:     logger.With("component", "generate_qr_code"),
	}
}

// Handle returns the QR image now linked to the shipment.
func (h *GenerateQRCodeCommandHandler) Handle(ctx context.Context, cmd GenerateQRCodeCommand) (shipment.ImageRef, error) {
	if err := cmd.Validate(); err != nil {
		return shipment.ImageRef{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return shipment.ImageRef{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shipmentRepo := uow.ShipmentRepository()
	s, err := shipmentRepo.Get(ctx, cmd.ShipmentID())
	if err != nil {
		return shipment.ImageRef{}, err
	}
	if existing := s.QRCode(); existing != nil && !cmd.Force() {
		return *existing, nil
	}

	payload, err := s.QRPayload().Encode()
	if err != nil {
		return shipment.ImageRef{}, err
	}
	png, err := h.encoder.Encode(payload)
	if err != nil {
		return shipment.ImageRef{}, err
	}

	stored, err := h.storage.Store(ctx, s.Waybill().String()+".png", "image/png", bytes.NewReader(png))
	if err != nil {
		return shipment.ImageRef{}, err
	}
	ref, err := shipment.NewImageRef(stored.ID, stored.Filename)
	if err != nil {
		return shipment.ImageRef{}, err
	}

	previous := s.SetQRCode(ref)
	if err = shipmentRepo.Update(ctx, s); err == nil {
		err = uow.Commit(ctx)
	}
	if err != nil {
		deleteFiles(ctx, h.storage, h.logger, []shipment.ImageRef{ref})
		return shipment.ImageRef{}, err
	}

	if previous != nil {
		deleteFiles(ctx, h.storage, h.logger, []shipment.ImageRef{*previous})
	}
	return ref, nil
}
