package queries

import (
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const shipmentColumns = `
	s.id,
	s.waybill_number,
	s.status,
	s.sender_name, s.sender_mobile, s.sender_email, s.sender_address, s.sender_business,
	s.receiver_name, s.receiver_mobile, s.receiver_email, s.receiver_address, s.receiver_business,
	s.destination_address, s.destination_country, s.destination_postcode,
	s.freight, s.additional_charges, s.pickup_charge, s.handling_fees, s.crating, s.insurance_charge,
	s.is_collection, s.customer_group, s.order_booked_by, s.delivery_date,
	s.qr_file_id, s.qr_filename,
	s.created_at, s.created_by, s.status_changed_by, s.status_changed_at,
	s.version`

// shipmentRow is one shipments row as selected by shipmentColumns.
type shipmentRow struct {
	ID            uuid.UUID
	WaybillNumber string
	Status        string

	SenderName, SenderMobile, SenderEmail, SenderAddress, SenderBusiness           string
	ReceiverName, ReceiverMobile, ReceiverEmail, ReceiverAddress, ReceiverBusiness string
	DestinationAddress, DestinationCountry, DestinationPostcode                    string

	Freight, AdditionalCharges, PickupCharge, HandlingFees, Crating, InsuranceCharge decimal.Decimal

	IsCollection  bool
	CustomerGroup string
	OrderBookedBy string
	DeliveryDate  *time.Time

	QRFileID   *string `gorm:"column:qr_file_id"`
	QRFilename *string `gorm:"column:qr_filename"`

	CreatedAt       time.Time
	CreatedBy       uuid.UUID
	StatusChangedBy *uuid.UUID
	StatusChangedAt *time.Time
	Version         int
}

type itemRow struct {
	ID            uuid.UUID
	Description   string
	Value         decimal.Decimal
	Quantity      int
	Weight        decimal.Decimal
	ImageFileID   *string
	ImageFilename *string
}

func (r shipmentRow) details() (shipment.Details, error) {
	sender, err := kernel.NewContact(r.SenderName, r.SenderMobile, r.SenderEmail, r.SenderAddress, r.SenderBusiness)
	if err != nil {
		return shipment.Details{}, err
	}
	receiver, err := kernel.NewContact(r.ReceiverName, r.ReceiverMobile, r.ReceiverEmail, r.ReceiverAddress, r.ReceiverBusiness)
	if err != nil {
		return shipment.Details{}, err
	}

	var components [6]kernel.Money
	for i, amount := range []decimal.Decimal{
		r.Freight, r.AdditionalCharges, r.PickupCharge, r.HandlingFees, r.Crating, r.InsuranceCharge,
	} {
		if components[i], err = kernel.NewMoney(amount); err != nil {
			return shipment.Details{}, err
		}
	}

	return shipment.Details{
		Sender:      sender,
		Receiver:    receiver,
		Destination: kernel.NewDestination(r.DestinationAddress, r.DestinationCountry, r.DestinationPostcode),
		Pricing:     shipment.NewPricing(components[0], components[1], components[2], components[3], components[4], components[5]),
		Booking: shipment.Booking{
			IsCollection:  r.IsCollection,
			CustomerGroup: r.CustomerGroup,
			OrderBookedBy: r.OrderBookedBy,
			DeliveryDate:  r.DeliveryDate,
		},
	}, nil
}

func uuidFromColumn(raw uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(raw[:])
}

func optionalUUIDFromColumn(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
