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

type TrackShipmentQueryHandler struct {
	db *gorm.DB
}

func NewTrackShipmentQueryHandler(db *gorm.DB) TrackShipmentQueryHandler {
	return TrackShipmentQueryHandler{db: db}
}

func (h TrackShipmentQueryHandler) Handle(ctx context.Context, query TrackShipmentQuery) (TrackingView, error) {
	if err := query.Validate(); err != nil {
		return TrackingView{}, err
	}

	db := h.db.WithContext(ctx)
	waybill := query.Waybill().String()

	var rows []shipmentRow
	if err := db.Raw(`SELECT `+shipmentColumns+`
		FROM shipments s
		WHERE s.waybill_number = ?`, waybill).Scan(&rows).Error; err != nil {
		return TrackingView{}, err
	}
	if len(rows) == 0 {
		return TrackingView{}, errs.NewObjectNotFoundError("waybill", waybill)
	}
	row := rows[0]

	status, err := shipment.ParseStatus(row.Status)
	if err != nil {
		return TrackingView{}, err
	}

	items, err := loadItems(db, row)
	if err != nil {
		return TrackingView{}, err
	}
	timeline, err := h.loadTimeline(db, row.ID)
	if err != nil {
		return TrackingView{}, err
	}

	view := TrackingView{
		Waybill:     row.WaybillNumber,
		Status:      status,
		CreatedAt:   row.CreatedAt,
		Destination: kernel.NewDestination(row.DestinationAddress, row.DestinationCountry, row.DestinationPostcode).String(),
		Sender:      TrackingParty{Name: row.SenderName, Business: row.SenderBusiness},
		Receiver:    TrackingParty{Name: row.ReceiverName, Business: row.ReceiverBusiness},
		Items:       make([]TrackingItem, 0, len(items)),
		Timeline:    timeline,
	}
	for _, item := range items {
		view.Items = append(view.Items, TrackingItem{Description: item.Description, Quantity: item.Quantity})
	}
	return view, nil
}

func (h TrackShipmentQueryHandler) loadTimeline(db *gorm.DB, shipmentID uuid.UUID) ([]TrackingEvent, error) {
	rows, err := db.Raw(`
		SELECT
			new_status,
			changed_at
		FROM shipment_status_history
		WHERE shipment_id = ?
		ORDER BY changed_at, id
	`, shipmentID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timeline := make([]TrackingEvent, 0)
	for rows.Next() {
		var raw string
		var changedAt time.Time
		if err = rows.Scan(&raw, &changedAt); err != nil {
			return nil, err
		}
		status, parseErr := shipment.ParseStatus(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		timeline = append(timeline, TrackingEvent{Status: status, ChangedAt: changedAt})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return timeline, nil
}
