package commands

import (
	"context"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
)

// RequestTransitionResult reports an accepted transition.
type RequestTransitionResult struct {
	ShipmentID kernel.UUID
	Waybill    string
	OldStatus  shipment.Status
	NewStatus  shipment.Status
	ChangedAt  time.Time
	Version    int
}

// RequestTransitionCommandHandler applies a status transition and appends the
// ledger entry in a single transaction.
//
// The status write carries the version the shipment was read with, so of two
// concurrent requests against the same shipment at most one commits; the
// other fails with ports.ErrConcurrentModification and writes nothing.
type RequestTransitionCommandHandler struct {
	uowFactory UoWFactory
}

func NewRequestTransitionCommandHandler(uowFactory UoWFactory) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle returns *shipment.InvalidTransitionError (matching
// shipment.ErrInvalidTransition) when the target is not reachable.
func (h *RequestTransitionCommandHandler) Handle(ctx context.Context, cmd RequestTransitionCommand) (RequestTransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return RequestTransitionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RequestTransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err := uow.UserRepository().Get(ctx, cmd.ActorID()); err != nil {
		return RequestTransitionResult{}, err
	}

	shipmentRepo := uow.ShipmentRepository()
	s, err := shipmentRepo.Get(ctx, cmd.ShipmentID())
	if err != nil {
		return RequestTransitionResult{}, err
	}

	change, err := s.RequestTransition(cmd.Target(), cmd.ActorID(), time.Now())
	if err != nil {
		return RequestTransitionResult{}, err
	}

	if err = shipmentRepo.Update(ctx, s); err != nil {
		return RequestTransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RequestTransitionResult{}, err
	}

	return RequestTransitionResult{
		ShipmentID: s.ID(),
		Waybill:    s.Waybill().String(),
		OldStatus:  change.OldStatus(),
		NewStatus:  change.NewStatus(),
		ChangedAt:  change.ChangedAt(),
		Version:    s.Version(),
	}, nil
}
