// Package shipmentrepo persists shipment aggregates, their items and their
// status ledger with GORM.
package shipmentrepo

import (
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const waybillUniqueIndex = "idx_shipments_waybill_number"

// ShipmentDTO is a row of the shipments table. Totals are stored alongside
// the pricing components so list queries do not have to recompute them.
type ShipmentDTO struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	WaybillNumber   string            `gorm:"type:varchar(32);not null;uniqueIndex:idx_shipments_waybill_number"`
	Status          string            `gorm:"type:varchar(20);not null;index"`
	Sender          ContactDTO        `gorm:"embedded;embeddedPrefix:sender_"`
	Receiver        ContactDTO        `gorm:"embedded;embeddedPrefix:receiver_"`
	Destination     AddressDTO        `gorm:"embedded;embeddedPrefix:destination_"`
	Pricing         PricingDTO        `gorm:"embedded"`
	Booking         BookingDTO        `gorm:"embedded"`
	QRFileID        *string           `gorm:"column:qr_file_id;type:varchar(64)"`
	QRFilename      *string           `gorm:"column:qr_filename;type:varchar(255)"`
	CreatedAt       time.Time         `gorm:"not null;index"`
	CreatedBy       uuid.UUID         `gorm:"type:uuid;not null"`
	StatusChangedBy *uuid.UUID        `gorm:"type:uuid"`
	StatusChangedAt *time.Time        `gorm:"type:timestamptz"`
	Version         int               `gorm:"not null;default:1"`
	Items           []ItemDTO         `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
	History         []StatusChangeDTO `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

type ContactDTO struct {
	Name     string `gorm:"type:varchar(255);not null"`
	Mobile   string `gorm:"type:varchar(64);not null"`
	Email    string `gorm:"type:varchar(255)"`
	Address  string `gorm:"type:text"`
	Business string `gorm:"type:varchar(255)"`
}

type AddressDTO struct {
	Address  string `gorm:"type:text"`
	Country  string `gorm:"type:varchar(128)"`
	Postcode string `gorm:"type:varchar(32)"`
}

type PricingDTO struct {
	Freight           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	AdditionalCharges decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	PickupCharge      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	HandlingFees      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Crating           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	InsuranceCharge   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Subtotal          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	VAT               decimal.Decimal `gorm:"column:vat;type:numeric;not null;default:0"`
	Total             decimal.Decimal `gorm:"type:numeric;not null;default:0"`
}

type BookingDTO struct {
	IsCollection  bool   `gorm:"not null;default:false"`
	CustomerGroup string `gorm:"type:varchar(64)"`
	OrderBookedBy string `gorm:"type:varchar(255)"`
	DeliveryDate  *time.Time
}

// ItemDTO is a row of shipment_items. Position keeps submission order.
type ItemDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShipmentID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position      int             `gorm:"not null"`
	Description   string          `gorm:"type:text;not null"`
	Value         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Quantity      int             `gorm:"not null"`
	Weight        decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"`
	ImageFileID   *string         `gorm:"type:varchar(64)"`
	ImageFilename *string         `gorm:"type:varchar(255)"`
}

func (ItemDTO) TableName() string {
	return "shipment_items"
}

// StatusChangeDTO is a row of the append-only shipment_status_history ledger.
type StatusChangeDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShipmentID uuid.UUID `gorm:"type:uuid;not null;index:idx_history_shipment_changed_at,priority:1"`
	OldStatus  string    `gorm:"type:varchar(20);not null"`
	NewStatus  string    `gorm:"type:varchar(20);not null"`
	ChangedBy  uuid.UUID `gorm:"type:uuid;not null"`
	ChangedAt  time.Time `gorm:"not null;index:idx_history_shipment_changed_at,priority:2"`
}

func (StatusChangeDTO) TableName() string {
	return "shipment_status_history"
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	id := s.ID().Bytes()
	details := s.Details()
	totals := s.Totals()

	dto := ShipmentDTO{
		ID:            id,
		WaybillNumber: s.Waybill().String(),
		Status:        s.Status().String(),
		Sender:        contactFromDomain(details.Sender),
		Receiver:      contactFromDomain(details.Receiver),
		Destination: AddressDTO{
			Address:  details.Destination.Address(),
			Country:  details.Destination.Country(),
			Postcode: details.Destination.Postcode(),
		},
		Pricing: PricingDTO{
			Freight:           details.Pricing.Freight().Decimal(),
			AdditionalCharges: details.Pricing.AdditionalCharges().Decimal(),
			PickupCharge:      details.Pricing.PickupCharge().Decimal(),
			HandlingFees:      details.Pricing.HandlingFees().Decimal(),
			Crating:           details.Pricing.Crating().Decimal(),
			InsuranceCharge:   details.Pricing.InsuranceCharge().Decimal(),
			Subtotal:          totals.Subtotal.Decimal(),
			VAT:               totals.VAT.Decimal(),
			Total:             totals.Total.Decimal(),
		},
		Booking: BookingDTO{
			IsCollection:  details.Booking.IsCollection,
			CustomerGroup: details.Booking.CustomerGroup,
			OrderBookedBy: details.Booking.OrderBookedBy,
			DeliveryDate:  details.Booking.DeliveryDate,
		},
		CreatedAt:       s.CreatedAt(),
		CreatedBy:       s.CreatedBy().Bytes(),
		StatusChangedAt: s.StatusChangedAt(),
		Version:         s.Version(),
	}

	if by := s.StatusChangedBy(); by != nil {
		raw := by.Bytes()
		dto.StatusChangedBy = &raw
	}
	if qr := s.QRCode(); qr != nil {
		fileID, filename := qr.FileID(), qr.Filename()
		dto.QRFileID = &fileID
		dto.QRFilename = &filename
	}

	dto.Items = make([]ItemDTO, 0, len(s.Items()))
	for i, item := range s.Items() {
		dto.Items = append(dto.Items, itemFromDomain(id, i, item))
	}

	return dto
}

func contactFromDomain(c kernel.Contact) ContactDTO {
	return ContactDTO{
		Name:     c.Name(),
		Mobile:   c.Mobile(),
		Email:    c.Email(),
		Address:  c.Address(),
		Business: c.Business(),
	}
}

func itemFromDomain(shipmentID uuid.UUID, position int, item *shipment.Item) ItemDTO {
	dto := ItemDTO{
		ID:          item.ID().Bytes(),
		ShipmentID:  shipmentID,
		Position:    position,
		Description: item.Description(),
		Value:       item.Value().Decimal(),
		Quantity:    item.Quantity(),
		Weight:      item.Weight(),
	}
	if image := item.Image(); image != nil {
		fileID, filename := image.FileID(), image.Filename()
		dto.ImageFileID = &fileID
		dto.ImageFilename = &filename
	}
	return dto
}

func statusChangeFromDomain(c shipment.StatusChange) StatusChangeDTO {
	return StatusChangeDTO{
		ID:         c.ID().Bytes(),
		ShipmentID: c.ShipmentID().Bytes(),
		OldStatus:  c.OldStatus().String(),
		NewStatus:  c.NewStatus().String(),
		ChangedBy:  c.ChangedBy().Bytes(),
		ChangedAt:  c.ChangedAt(),
	}
}

func toDomain(dto ShipmentDTO, rate shipment.VATRate) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	createdBy, err := kernel.UUIDFromBytes(dto.CreatedBy[:])
	if err != nil {
		return nil, err
	}
	waybill, err := shipment.ParseWaybillNumber(dto.WaybillNumber)
	if err != nil {
		return nil, err
	}
	status, err := shipment.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var statusChangedBy *kernel.UUID
	if dto.StatusChangedBy != nil {
		by, byErr := kernel.UUIDFromBytes((*dto.StatusChangedBy)[:])
		if byErr != nil {
			return nil, byErr
		}
		statusChangedBy = &by
	}

	qrCode, err := imageRef(dto.QRFileID, dto.QRFilename)
	if err != nil {
		return nil, err
	}

	details, err := detailsToDomain(dto)
	if err != nil {
		return nil, err
	}

	items := make([]*shipment.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return shipment.RestoreShipment(shipment.Snapshot{
		ID:              id,
		Waybill:         waybill,
		Details:         details,
		Items:           items,
		Status:          status,
		CreatedAt:       dto.CreatedAt,
		CreatedBy:       createdBy,
		StatusChangedBy: statusChangedBy,
		StatusChangedAt: dto.StatusChangedAt,
		QRCode:          qrCode,
		Version:         dto.Version,
	}, rate)
}

func detailsToDomain(dto ShipmentDTO) (shipment.Details, error) {
	sender, err := kernel.NewContact(dto.Sender.Name, dto.Sender.Mobile, dto.Sender.Email, dto.Sender.Address, dto.Sender.Business)
	if err != nil {
		return shipment.Details{}, err
	}
	receiver, err := kernel.NewContact(dto.Receiver.Name, dto.Receiver.Mobile, dto.Receiver.Email, dto.Receiver.Address, dto.Receiver.Business)
	if err != nil {
		return shipment.Details{}, err
	}

	var components [6]kernel.Money
	for i, amount := range []decimal.Decimal{
		dto.Pricing.Freight,
		dto.Pricing.AdditionalCharges,
		dto.Pricing.PickupCharge,
		dto.Pricing.HandlingFees,
		dto.Pricing.Crating,
		dto.Pricing.InsuranceCharge,
	} {
		if components[i], err = kernel.NewMoney(amount); err != nil {
			return shipment.Details{}, err
		}
	}

	return shipment.Details{
		Sender:      sender,
		Receiver:    receiver,
		Destination: kernel.NewDestination(dto.Destination.Address, dto.Destination.Country, dto.Destination.Postcode),
		Pricing:     shipment.NewPricing(components[0], components[1], components[2], components[3], components[4], components[5]),
		Booking: shipment.Booking{
			IsCollection:  dto.Booking.IsCollection,
			CustomerGroup: dto.Booking.CustomerGroup,
			OrderBookedBy: dto.Booking.OrderBookedBy,
			DeliveryDate:  dto.Booking.DeliveryDate,
		},
	}, nil
}

func itemToDomain(dto ItemDTO) (*shipment.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	value, err := kernel.NewMoney(dto.Value)
	if err != nil {
		return nil, err
	}
	image, err := imageRef(dto.ImageFileID, dto.ImageFilename)
	if err != nil {
		return nil, err
	}
	return shipment.RestoreItem(id, dto.Description, value, dto.Quantity, dto.Weight, image)
}

func statusChangeToDomain(dto StatusChangeDTO) (shipment.StatusChange, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return shipment.StatusChange{}, err
	}
	shipmentID, err := kernel.UUIDFromBytes(dto.ShipmentID[:])
	if err != nil {
		return shipment.StatusChange{}, err
	}
	changedBy, err := kernel.UUIDFromBytes(dto.ChangedBy[:])
	if err != nil {
		return shipment.StatusChange{}, err
	}
	oldStatus, err := shipment.ParseStatus(dto.OldStatus)
	if err != nil {
		return shipment.StatusChange{}, err
	}
	newStatus, err := shipment.ParseStatus(dto.NewStatus)
	if err != nil {
		return shipment.StatusChange{}, err
	}
	return shipment.RestoreStatusChange(id, shipmentID, oldStatus, newStatus, changedBy, dto.ChangedAt)
}

func imageRef(fileID, filename *string) (*shipment.ImageRef, error) {
	if fileID == nil {
		return nil, nil
	}
	name := ""
	if filename != nil {
		name = *filename
	}
	ref, err := shipment.NewImageRef(*fileID, name)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
