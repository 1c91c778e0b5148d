// Package queries contains read operations for retrieving system state.
// Query handlers read straight from the database and return read models
// shaped for a single use case; writes go through the commands package.
package queries

import (
	"errors"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetShipmentQueryIsNotConstructed = errors.New(
		"GetShipmentQuery must be created via NewGetShipmentQuery constructor",
	)
)

// GetShipmentQuery loads one shipment with its items for the detail view.
//
// Example:
//
//	query, err := NewGetShipmentQuery(shipmentID)
//	if err != nil {
//	    return err
//	}
//
//	view, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to load shipment: %w", err)
//	}
//	fmt.Printf("%s is %s, total %s\n", view.Waybill, view.Status, view.Totals.Total.Round())
type GetShipmentQuery struct {
	shipmentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetShipmentQuery(shipmentID kernel.UUID) (GetShipmentQuery, error) {
	if err := shipmentID.Validate(); err != nil {
		return GetShipmentQuery{}, err
	}
	return GetShipmentQuery{shipmentID: shipmentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetShipmentQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentQueryIsNotConstructed)
}

func (q GetShipmentQuery) ShipmentID() kernel.UUID { return q.shipmentID }

// ShipmentView is the full read model of a shipment. Totals are recomputed
// from the pricing components with the configured VAT rate.
type ShipmentView struct {
	ID                 kernel.UUID
	Waybill            string
	Status             shipment.Status
	AllowedTransitions []shipment.Status
	Sender             kernel.Contact
	Receiver           kernel.Contact
	Destination        kernel.Destination
	Pricing            shipment.Pricing
	Totals             shipment.Totals
	Booking            shipment.Booking
	Items              []ItemView
	QRCodeFileID       string
	CreatedAt          time.Time
	CreatedBy          kernel.UUID
	StatusChangedBy    *kernel.UUID
	StatusChangedAt    *time.Time
	Version            int
}

// ItemView is one line of the shipment manifest.
type ItemView struct {
	ID            kernel.UUID
	Description   string
	Value         kernel.Money
	Quantity      int
	Weight        decimal.Decimal
	ImageFileID   string
	ImageFilename string
}
