package queries

import (
	"context"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/services"
	"exportdocs/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetShipmentQueryHandler reads a shipment and its items with two statements
// and recomputes the totals with the calculator's rate.
type GetShipmentQueryHandler struct {
	db      *gorm.DB
	pricing services.PricingCalculator
}

func NewGetShipmentQueryHandler(db *gorm.DB, pricing services.PricingCalculator) GetShipmentQueryHandler {
	return GetShipmentQueryHandler{db: db, pricing: pricing}
}

// Handle returns *errs.ObjectNotFoundError when no shipment has the id.
func (h GetShipmentQueryHandler) Handle(ctx context.Context, query GetShipmentQuery) (ShipmentView, error) {
	if err := query.Validate(); err != nil {
		return ShipmentView{}, err
	}

	db := h.db.WithContext(ctx)

	var rows []shipmentRow
	if err := db.Raw(`SELECT `+shipmentColumns+`
		FROM shipments s
		WHERE s.id = ?`, query.ShipmentID().Bytes()).Scan(&rows).Error; err != nil {
		return ShipmentView{}, err
	}
	if len(rows) == 0 {
		return ShipmentView{}, errs.NewObjectNotFoundError("shipmentID", query.ShipmentID())
	}

	view, err := h.toView(rows[0])
	if err != nil {
		return ShipmentView{}, err
	}

	items, err := loadItems(db, rows[0])
	if err != nil {
		return ShipmentView{}, err
	}
	view.Items = items

	return view, nil
}

func (h GetShipmentQueryHandler) toView(row shipmentRow) (ShipmentView, error) {
	id, err := uuidFromColumn(row.ID)
	if err != nil {
		return ShipmentView{}, err
	}
	createdBy, err := uuidFromColumn(row.CreatedBy)
	if err != nil {
		return ShipmentView{}, err
	}
	changedBy, err := optionalUUIDFromColumn(row.StatusChangedBy)
	if err != nil {
		return ShipmentView{}, err
	}
	status, err := shipment.ParseStatus(row.Status)
	if err != nil {
		return ShipmentView{}, err
	}
	details, err := row.details()
	if err != nil {
		return ShipmentView{}, err
	}

	return ShipmentView{
		ID:                 id,
		Waybill:            row.WaybillNumber,
		Status:             status,
		AllowedTransitions: status.AllowedTargets(),
		Sender:             details.Sender,
		Receiver:           details.Receiver,
		Destination:        details.Destination,
		Pricing:            details.Pricing,
		Totals:             h.pricing.Quote(details.Pricing),
		Booking:            details.Booking,
		QRCodeFileID:       stringOrEmpty(row.QRFileID),
		CreatedAt:          row.CreatedAt,
		CreatedBy:          createdBy,
		StatusChangedBy:    changedBy,
		StatusChangedAt:    row.StatusChangedAt,
		Version:            row.Version,
	}, nil
}

func loadItems(db *gorm.DB, row shipmentRow) ([]ItemView, error) {
	var rows []itemRow
	if err := db.Raw(`
		SELECT
			id,
			description,
			value,
			quantity,
			weight,
			image_file_id,
			image_filename
		FROM shipment_items
		WHERE shipment_id = ?
		ORDER BY position
	`, row.ID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]ItemView, 0, len(rows))
	for _, r := range rows {
		id, err := uuidFromColumn(r.ID)
		if err != nil {
			return nil, err
		}
		value, err := kernel.NewMoney(r.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, ItemView{
			ID:            id,
			Description:   r.Description,
			Value:         value,
			Quantity:      r.Quantity,
			Weight:        r.Weight,
			ImageFileID:   stringOrEmpty(r.ImageFileID),
			ImageFilename: stringOrEmpty(r.ImageFilename),
		})
	}
	return items, nil
}
