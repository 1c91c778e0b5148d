package http

import (
	"errors"
	"fmt"
	"time"

	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ContactRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Mobile   string `json:"mobile" validate:"required,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address" validate:"max=1000"`
	Business string `json:"business" validate:"max=255"`
}

type DestinationRequest struct {
	Address  string `json:"address" validate:"max=1000"`
	Country  string `json:"country" validate:"max=100"`
	Postcode string `json:"postcode" validate:"max=20"`
}

type PricingRequest struct {
	Freight           decimal.Decimal `json:"freight"`
	AdditionalCharges decimal.Decimal `json:"additional_charges"`
	PickupCharge      decimal.Decimal `json:"pickup_charge"`
	HandlingFees      decimal.Decimal `json:"handling_fees"`
	Crating           decimal.Decimal `json:"crating"`
	InsuranceCharge   decimal.Decimal `json:"insurance_charge"`
}

type BookingRequest struct {
	IsCollection  bool   `json:"is_collection"`
	CustomerGroup string `json:"customer_group" validate:"max=100"`
	OrderBookedBy string `json:"order_booked_by" validate:"max=255"`
	DeliveryDate  string `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
}

type ItemRequest struct {
	ID          *uuid.UUID      `json:"id"`
	Description string          `json:"description" validate:"required,max=1000"`
	Value       decimal.Decimal `json:"value"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	Weight      decimal.Decimal `json:"weight"`
}

// ShipmentRequest is the editable part of a shipment, shared by create and amend.
type ShipmentRequest struct {
	Sender      ContactRequest     `json:"sender" validate:"required"`
	Receiver    ContactRequest     `json:"receiver" validate:"required"`
	Destination DestinationRequest `json:"destination"`
	Pricing     PricingRequest     `json:"pricing"`
	Booking     BookingRequest     `json:"booking"`
	Items       []ItemRequest      `json:"items" validate:"dive"`
}

type CreateShipmentRequest struct {
	ShipmentRequest
	Draft bool `json:"draft"`
}

type AmendShipmentRequest struct {
	ShipmentRequest
	Version int `json:"version" validate:"required,gte=1"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r ShipmentRequest) details() (shipment.Details, error) {
	sender, senderErr := kernel.NewContact(r.Sender.Name, r.Sender.Mobile, r.Sender.Email, r.Sender.Address, r.Sender.Business)
	receiver, receiverErr := kernel.NewContact(r.Receiver.Name, r.Receiver.Mobile, r.Receiver.Email, r.Receiver.Address, r.Receiver.Business)
	pricing, pricingErr := r.Pricing.toDomain()
	booking, bookingErr := r.Booking.toDomain()

	if err := errors.Join(
		prefixed("sender", senderErr),
		prefixed("receiver", receiverErr),
		pricingErr,
		bookingErr,
	); err != nil {
		return shipment.Details{}, err
	}

	return shipment.Details{
		Sender:      sender,
		Receiver:    receiver,
		Destination: kernel.NewDestination(r.Destination.Address, r.Destination.Country, r.Destination.Postcode),
		Pricing:     pricing,
		Booking:     booking,
	}, nil
}

func (r ShipmentRequest) items() ([]commands.ItemInput, error) {
	inputs := make([]commands.ItemInput, 0, len(r.Items))
	var errList []error
	for i, item := range r.Items {
		value, err := kernel.NewMoney(item.Value)
		if err != nil {
			errList = append(errList, fmt.Errorf("item %d: %w", i+1, err))
			continue
		}
		input := commands.ItemInput{
			Description: item.Description,
			Value:       value,
			Quantity:    item.Quantity,
			Weight:      item.Weight,
		}
		if item.ID != nil {
			if input.ID, err = kernel.UUIDFromBytes(item.ID[:]); err != nil {
				errList = append(errList, fmt.Errorf("item %d: %w", i+1, err))
				continue
			}
		}
		inputs = append(inputs, input)
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return inputs, nil
}

func (p PricingRequest) toDomain() (shipment.Pricing, error) {
	names := []string{"freight", "additional_charges", "pickup_charge", "handling_fees", "crating", "insurance_charge"}
	amounts := []decimal.Decimal{p.Freight, p.AdditionalCharges, p.PickupCharge, p.HandlingFees, p.Crating, p.InsuranceCharge}

	var money [6]kernel.Money
	var errList []error
	for i, amount := range amounts {
		m, err := kernel.NewMoney(amount)
		if err != nil {
			errList = append(errList, prefixed(names[i], err))
			continue
		}
		money[i] = m
	}
	if err := errors.Join(errList...); err != nil {
		return shipment.Pricing{}, err
	}
	return shipment.NewPricing(money[0], money[1], money[2], money[3], money[4], money[5]), nil
}

func (b BookingRequest) toDomain() (shipment.Booking, error) {
	booking := shipment.Booking{
		IsCollection:  b.IsCollection,
		CustomerGroup: b.CustomerGroup,
		OrderBookedBy: b.OrderBookedBy,
	}
	if b.DeliveryDate != "" {
		date, err := time.Parse(dateLayout, b.DeliveryDate)
		if err != nil {
			return shipment.Booking{}, errs.NewValueIsInvalidErrorWithCause("delivery_date", err)
		}
		booking.DeliveryDate = &date
	}
	return booking, nil
}

func prefixed(field string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", field, err)
}

type ContactResponse struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Business string `json:"business"`
}

type DestinationResponse struct {
	Address  string `json:"address"`
	Country  string `json:"country"`
	Postcode string `json:"postcode"`
}

type PricingResponse struct {
	Freight           string `json:"freight"`
	AdditionalCharges string `json:"additional_charges"`
	PickupCharge      string `json:"pickup_charge"`
	HandlingFees      string `json:"handling_fees"`
	Crating           string `json:"crating"`
	InsuranceCharge   string `json:"insurance_charge"`
	Subtotal          string `json:"subtotal"`
	VAT               string `json:"vat"`
	Total             string `json:"total"`
}

type BookingResponse struct {
	IsCollection  bool    `json:"is_collection"`
	CustomerGroup string  `json:"customer_group"`
	OrderBookedBy string  `json:"order_booked_by"`
	DeliveryDate  *string `json:"delivery_date"`
}

type ItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Value       string    `json:"value"`
	Quantity    int       `json:"quantity"`
	Weight      string    `json:"weight"`
	ImageFileID string    `json:"image_file_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type ShipmentResponse struct {
	ID                 uuid.UUID           `json:"id"`
	WaybillNumber      string              `json:"waybill_number"`
	Status             string              `json:"status"`
	AllowedTransitions []string            `json:"allowed_transitions"`
	Sender             ContactResponse     `json:"sender"`
	Receiver           ContactResponse     `json:"receiver"`
	Destination        DestinationResponse `json:"destination"`
	Pricing            PricingResponse     `json:"pricing"`
	Booking            BookingResponse     `json:"booking"`
	Items              []ItemResponse      `json:"items"`
	QRCodeURL          string              `json:"qr_code_url,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	CreatedBy          uuid.UUID           `json:"created_by"`
	StatusChangedAt    *time.Time          `json:"status_changed_at"`
	StatusChangedBy    *uuid.UUID          `json:"status_changed_by"`
	Version            int                 `json:"version"`
}

type ShipmentSummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	WaybillNumber string    `json:"waybill_number"`
	Status        string    `json:"status"`
	SenderName    string    `json:"sender_name"`
	ReceiverName  string    `json:"receiver_name"`
	Destination   string    `json:"destination"`
	Total         string    `json:"total"`
	HasQRCode     bool      `json:"has_qr_code"`
	CreatedAt     time.Time `json:"created_at"`
}

type ShipmentPageResponse struct {
	Items      []ShipmentSummaryResponse `json:"items"`
	Page       int                       `json:"page"`
	PerPage    int                       `json:"per_page"`
	Total      int64                     `json:"total"`
	TotalPages int                       `json:"total_pages"`
}

type TransitionResponse struct {
	ShipmentID    uuid.UUID `json:"shipment_id"`
	WaybillNumber string    `json:"waybill_number"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedAt     time.Time `json:"changed_at"`
	Version       int       `json:"version"`
}

type HistoryEntryResponse struct {
	ID            uuid.UUID `json:"id"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedBy     uuid.UUID `json:"changed_by"`
	ChangedByName string    `json:"changed_by_name"`
	ChangedAt     time.Time `json:"changed_at"`
}

type HistoryResponse struct {
	ShipmentID    uuid.UUID              `json:"shipment_id"`
	WaybillNumber string                 `json:"waybill_number"`
	CurrentStatus string                 `json:"current_status"`
	Consistent    bool                   `json:"consistent"`
	Entries       []HistoryEntryResponse `json:"entries"`
}

type FileResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type NextWaybillResponse struct {
	WaybillNumber string `json:"waybill_number"`
}

type TrackingPartyResponse struct {
	Name     string `json:"name"`
	Business string `json:"business"`
}

type TrackingItemResponse struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type TrackingEventResponse struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type TrackingResponse struct {
	WaybillNumber string                  `json:"waybill_number"`
	Status        string                  `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	Destination   string                  `json:"destination"`
	Sender        TrackingPartyResponse   `json:"sender"`
	Receiver      TrackingPartyResponse   `json:"receiver"`
	Items         []TrackingItemResponse  `json:"items"`
	Timeline      []TrackingEventResponse `json:"timeline"`
}

func fileURL(fileID string) string {
	if fileID == "" {
		return ""
	}
	return "/api/files/" + fileID
}

func contactResponse(c kernel.Contact) ContactResponse {
	return ContactResponse{
		Name:     c.Name(),
		Mobile:   c.Mobile(),
		Email:    c.Email(),
		Address:  c.Address(),
		Business: c.Business(),
	}
}

func statusNames(statuses []shipment.Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}

func shipmentResponse(view queries.ShipmentView) ShipmentResponse {
	resp := ShipmentResponse{
		ID:                 view.ID.Bytes(),
		WaybillNumber:      view.Waybill,
		Status:             view.Status.String(),
		AllowedTransitions: statusNames(view.AllowedTransitions),
		Sender:             contactResponse(view.Sender),
		Receiver:           contactResponse(view.Receiver),
		Destination: DestinationResponse{
			Address:  view.Destination.Address(),
			Country:  view.Destination.Country(),
			Postcode: view.Destination.Postcode(),
		},
		Pricing: PricingResponse{
			Freight:           view.Pricing.Freight().String(),
			AdditionalCharges: view.Pricing.AdditionalCharges().String(),
			PickupCharge:      view.Pricing.PickupCharge().String(),
			HandlingFees:      view.Pricing.HandlingFees().String(),
			Crating:           view.Pricing.Crating().String(),
			InsuranceCharge:   view.Pricing.InsuranceCharge().String(),
			Subtotal:          view.Totals.Subtotal.String(),
			VAT:               view.Totals.VAT.String(),
			Total:             view.Totals.Total.String(),
		},
		Booking: BookingResponse{
			IsCollection:  view.Booking.IsCollection,
			CustomerGroup: view.Booking.CustomerGroup,
			OrderBookedBy: view.Booking.OrderBookedBy,
		},
		Items:           make([]ItemResponse, 0, len(view.Items)),
		QRCodeURL:       fileURL(view.QRCodeFileID),
		CreatedAt:       view.CreatedAt,
		CreatedBy:       view.CreatedBy.Bytes(),
		StatusChangedAt: view.StatusChangedAt,
		Version:         view.Version,
	}
	if view.Booking.DeliveryDate != nil {
		date := view.Booking.DeliveryDate.Format(dateLayout)
		resp.Booking.DeliveryDate = &date
	}
	if view.StatusChangedBy != nil {
		changedBy := view.StatusChangedBy.Bytes()
		resp.StatusChangedBy = &changedBy
	}
	for _, item := range view.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ID:          item.ID.Bytes(),
			Description: item.Description,
			Value:       item.Value.String(),
			Quantity:    item.Quantity,
			Weight:      item.Weight.String(),
			ImageFileID: item.ImageFileID,
			ImageURL:    fileURL(item.ImageFileID),
		})
	}
	return resp
}

func shipmentPageResponse(page queries.ShipmentPage) ShipmentPageResponse {
	resp := ShipmentPageResponse{
		Items:      make([]ShipmentSummaryResponse, 0, len(page.Items)),
		Page:       page.Page,
		PerPage:    page.PerPage,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for _, s := range page.Items {
		resp.Items = append(resp.Items, ShipmentSummaryResponse{
			ID:            s.ID.Bytes(),
			WaybillNumber: s.Waybill,
			Status:        s.Status.String(),
			SenderName:    s.SenderName,
			ReceiverName:  s.ReceiverName,
			Destination:   s.Destination,
			Total:         s.Total.String(),
			HasQRCode:     s.QRCodeReady,
			CreatedAt:     s.CreatedAt,
		})
	}
	return resp
}

func historyResponse(view queries.StatusHistoryView) HistoryResponse {
	resp := HistoryResponse{
		ShipmentID:    view.ShipmentID.Bytes(),
		WaybillNumber: view.Waybill,
		CurrentStatus: view.CurrentStatus.String(),
		Consistent:    view.Consistent,
		Entries:       make([]HistoryEntryResponse, 0, len(view.Entries)),
	}
	for _, e := range view.Entries {
		resp.Entries = append(resp.Entries, HistoryEntryResponse{
			ID:            e.ID.Bytes(),
			OldStatus:     e.OldStatus.String(),
			NewStatus:     e.NewStatus.String(),
			ChangedBy:     e.ChangedBy.Bytes(),
			ChangedByName: e.ChangedByName,
			ChangedAt:     e.ChangedAt,
		})
	}
	return resp
}

func trackingResponse(view queries.TrackingView) TrackingResponse {
	resp := TrackingResponse{
		WaybillNumber: view.Waybill,
		Status:        view.Status.String(),
		CreatedAt:     view.CreatedAt,
		Destination:   view.Destination,
		Sender:        TrackingPartyResponse{Name: view.Sender.Name, Business: view.Sender.Business},
		Receiver:      TrackingPartyResponse{Name: view.Receiver.Name, Business: view.Receiver.Business},
		Items:         make([]TrackingItemResponse, 0, len(view.Items)),
		Timeline:      make([]TrackingEventResponse, 0, len(view.Timeline)),
	}
	for _, item := range view.Items {
		resp.Items = append(resp.Items, TrackingItemResponse{Description: item.Description, Quantity: item.Quantity})
	}
	for _, event := range view.Timeline {
		resp.Timeline = append(resp.Timeline, TrackingEventResponse{Status: event.Status.String(), ChangedAt: event.ChangedAt})
	}
	return resp
}

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	IsAdmin     bool   `json:"is_admin"`
	IsSuperuser bool   `json:"is_superuser"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	IsAdmin     bool      `json:"is_admin"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

type ContactEntryResponse struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email"`
	Business      string `json:"business"`
	Address       string `json:"address"`
	CustomerGroup string `json:"customer_group"`
}

type ContactPageResponse struct {
	Items      []ContactEntryResponse `json:"items"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"total_pages"`
}

func userResponses(users []queries.UserSummary) []UserResponse {
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:          u.ID.Bytes(),
			Username:    u.Username,
			Name:        u.Name,
			IsAdmin:     u.IsAdmin,
			IsSuperuser: u.IsSuperuser,
			CreatedAt:   u.CreatedAt,
		})
	}
	return resp
}

func contactPageResponse(page queries.ContactPage) ContactPageResponse {
	resp := ContactPageResponse{
		Items:      make([]ContactEntryResponse, 0, len(page.Items)),
		Page:       page.Page,
		PerPage:    page.PerPage,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for _, c := range page.Items {
		resp.Items = append(resp.Items, ContactEntryResponse{
			Type:          string(c.Kind),
			Name:          c.Name,
			Mobile:        c.Mobile,
			Email:         c.Email,
			Business:      c.Business,
			Address:       c.Address,
			CustomerGroup: c.CustomerGroup,
		})
	}
	return resp
}
