package queries

import (
	"context"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shipmentHead struct {
	WaybillNumber string
	Status        string
}

type GetStatusHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetStatusHistoryQueryHandler(db *gorm.DB) GetStatusHistoryQueryHandler {
	return GetStatusHistoryQueryHandler{db: db}
}

// Handle returns the ledger with each actor's display name. A ledger that
// does not replay is still returned, flagged as inconsistent.
func (h GetStatusHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetStatusHistoryQuery,
) (StatusHistoryView, error) {
	if err := query.Validate(); err != nil {
		return StatusHistoryView{}, err
	}

	db := h.db.WithContext(ctx)
	shipmentID := query.ShipmentID()

	var head []shipmentHead
	if err := db.Raw(`SELECT waybill_number, status FROM shipments WHERE id = ?`,
		shipmentID.Bytes()).Scan(&head).Error; err != nil {
		return StatusHistoryView{}, err
	}
	if len(head) == 0 {
		return StatusHistoryView{}, errs.NewObjectNotFoundError("shipmentID", shipmentID)
	}
	current, err := shipment.ParseStatus(head[0].Status)
	if err != nil {
		return StatusHistoryView{}, err
	}

	rows, err := db.Raw(`
		SELECT
			h.id,
			h.old_status,
			h.new_status,
			h.changed_by,
			COALESCE(u.name, ''),
			h.changed_at
		FROM shipment_status_history h
		LEFT JOIN users u ON u.id = h.changed_by
		WHERE h.shipment_id = ?
		ORDER BY h.changed_at, h.id
	`, shipmentID.Bytes()).Rows()
	if err != nil {
		return StatusHistoryView{}, err
	}
	defer rows.Close()

	view := StatusHistoryView{
		ShipmentID:    shipmentID,
		Waybill:       head[0].WaybillNumber,
		CurrentStatus: current,
		Entries:       make([]StatusHistoryEntry, 0),
	}
	ledger := make([]shipment.StatusChange, 0)

	for rows.Next() {
		var id, changedBy uuid.UUID
		var oldRaw, newRaw, changedByName string
		var changedAt time.Time

		if err = rows.Scan(&id, &oldRaw, &newRaw, &changedBy, &changedByName, &changedAt); err != nil {
			return StatusHistoryView{}, err
		}

		change, restoreErr := restoreChange(shipmentID, id, oldRaw, newRaw, changedBy, changedAt)
		if restoreErr != nil {
			return StatusHistoryView{}, restoreErr
		}
		ledger = append(ledger, change)
		view.Entries = append(view.Entries, StatusHistoryEntry{
			ID:            change.ID(),
			OldStatus:     change.OldStatus(),
			NewStatus:     change.NewStatus(),
			ChangedBy:     change.ChangedBy(),
			ChangedByName: changedByName,
			ChangedAt:     change.ChangedAt(),
		})
	}

	if err = rows.Err(); err != nil {
		return StatusHistoryView{}, err
	}

	view.Consistent = replays(current, ledger)
	return view, nil
}

func restoreChange(
	shipmentID kernel.UUID,
	rawID uuid.UUID,
	oldRaw, newRaw string,
	rawChangedBy uuid.UUID,
	changedAt time.Time,
) (shipment.StatusChange, error) {
	id, err := kernel.UUIDFromBytes(rawID[:])
	if err != nil {
		return shipment.StatusChange{}, err
	}
	changedBy, err := kernel.UUIDFromBytes(rawChangedBy[:])
	if err != nil {
		return shipment.StatusChange{}, err
	}
	oldStatus, err := shipment.ParseStatus(oldRaw)
	if err != nil {
		return shipment.StatusChange{}, err
	}
	newStatus, err := shipment.ParseStatus(newRaw)
	if err != nil {
		return shipment.StatusChange{}, err
	}
	return shipment.RestoreStatusChange(id, shipmentID, oldStatus, newStatus, changedBy, changedAt)
}

// replays reports whether the ledger walks from its first old status to
// current. An empty ledger is consistent only for a shipment still in an
// initial status.
func replays(current shipment.Status, ledger []shipment.StatusChange) bool {
	if len(ledger) == 0 {
		return current.IsInitial()
	}
	final, err := shipment.ReplayHistory(ledger[0].OldStatus(), ledger)
	if err != nil {
		return false
	}
	return final == current
}
