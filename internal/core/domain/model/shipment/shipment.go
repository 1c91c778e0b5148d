package shipment

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"
)

var (
	// ErrShipmentIsNotConstructed is returned when a Shipment instance was not created through
	// NewShipment or RestoreShipment.
	ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment constructor")

	// ErrShipmentIsClosed is returned when amending a delivered or cancelled shipment.
	ErrShipmentIsClosed = errs.NewValueIsInvalidError("shipment is delivered or cancelled")
)

// Booking carries the commercial metadata of a shipment.
type Booking struct {
	IsCollection  bool
	CustomerGroup string
	OrderBookedBy string
	DeliveryDate  *time.Time
}

// Details is the editable part of a shipment: everything an amendment may replace.
type Details struct {
	Sender      kernel.Contact
	Receiver    kernel.Contact
	Destination kernel.Destination
	Pricing     Pricing
	Booking     Booking
}

// Validate checks both contact blocks.
func (d Details) Validate() error {
	var senderErr, receiverErr error
	if err := d.Sender.Validate(); err != nil {
		senderErr = fmt.Errorf("sender: %w", err)
	}
	if err := d.Receiver.Validate(); err != nil {
		receiverErr = fmt.Errorf("receiver: %w", err)
	}
	return errors.Join(senderErr, receiverErr)
}

// Shipment is the aggregate root of an export consignment. It owns its items
// and its status ledger; it only references the users that created it and
// last changed its status.
//
// Shipment follows these invariants:
//   - status is always a member of the enumeration
//   - status only changes along an edge of the transition table, and every
//     change appends exactly one StatusChange
//   - totals are derived from pricing and the VAT rate, never set directly
//   - delivered and cancelled shipments are read-only apart from their files
//
// Example:
//
//	s, err := shipment.NewShipment(kernel.NewUUID(), waybill, details, items, userID, false, rate, time.Now())
//	if err != nil {
//	    return err
//	}
//	change, err := s.RequestTransition(shipment.Confirmed, actorID, time.Now())
//	if errors.Is(err, shipment.ErrInvalidTransition) {
//	    // tell the caller which statuses are reachable
//	}
type Shipment struct {
	id      kernel.UUID
	waybill WaybillNumber
	details Details
	totals  Totals
	items   []*Item
	status  Status

	createdAt       time.Time
	createdBy       kernel.UUID
	statusChangedBy *kernel.UUID
	statusChangedAt *time.Time
	qrCode          *ImageRef

	// version is the optimistic lock value the shipment was loaded with.
	version        int
	pendingChanges []StatusChange

	isConstructed bool
}

// NewShipment creates a submitted shipment in Pending, or a draft in Saved.
// Totals are computed from details.Pricing and rate.
func NewShipment(
	id kernel.UUID,
	waybill WaybillNumber,
	details Details,
	items []*Item,
	createdBy kernel.UUID,
	draft bool,
	rate VATRate,
	createdAt time.Time,
) (*Shipment, error) {
	status := Pending
	if draft {
		status = Saved
	}

	s := &Shipment{
		status:        status,
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		s.setID(id),
		s.setWaybill(waybill),
		s.setCreatedBy(createdBy),
		s.setCreatedAt(createdAt),
		s.setDetails(details),
		s.setItems(items),
	); err != nil {
		return nil, err
	}
	s.RecomputeTotals(rate)

	return s, nil
}

// Snapshot is the persisted state of a shipment.
type Snapshot struct {
	ID              kernel.UUID
	Waybill         WaybillNumber
	Details         Details
	Items           []*Item
	Status          Status
	CreatedAt       time.Time
	CreatedBy       kernel.UUID
	StatusChangedBy *kernel.UUID
	StatusChangedAt *time.Time
	QRCode          *ImageRef
	Version         int
}

// RestoreShipment rebuilds a shipment from persistence. Totals are recomputed
// from the stored pricing and rate rather than read back.
func RestoreShipment(snapshot Snapshot, rate VATRate) (*Shipment, error) {
	s := &Shipment{
		statusChangedBy: snapshot.StatusChangedBy,
		statusChangedAt: snapshot.StatusChangedAt,
		qrCode:          snapshot.QRCode,
		isConstructed:   true,
	}

	var versionErr error
	if snapshot.Version < 1 {
		versionErr = errs.NewVersionIsInvalidError("version")
	}

	if err := errors.Join(
		s.setID(snapshot.ID),
		s.setWaybill(snapshot.Waybill),
		s.setCreatedBy(snapshot.CreatedBy),
		s.setCreatedAt(snapshot.CreatedAt),
		s.setDetails(snapshot.Details),
		s.setItems(snapshot.Items),
		snapshot.Status.Validate(),
		versionErr,
	); err != nil {
		return nil, err
	}
	s.status = snapshot.Status
	s.version = snapshot.Version
	s.RecomputeTotals(rate)

	return s, nil
}

// Validate ensures the Shipment instance was properly constructed.
func (s *Shipment) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrShipmentIsNotConstructed
	}
	return nil
}

func (s *Shipment) ID() kernel.UUID                 { return s.id }
func (s *Shipment) Waybill() WaybillNumber          { return s.waybill }
func (s *Shipment) Details() Details                { return s.details }
func (s *Shipment) Sender() kernel.Contact          { return s.details.Sender }
func (s *Shipment) Receiver() kernel.Contact        { return s.details.Receiver }
func (s *Shipment) Destination() kernel.Destination { return s.details.Destination }
func (s *Shipment) Pricing() Pricing                { return s.details.Pricing }
func (s *Shipment) Booking() Booking                { return s.details.Booking }
func (s *Shipment) Totals() Totals                  { return s.totals }
func (s *Shipment) Status() Status                  { return s.status }
func (s *Shipment) CreatedAt() time.Time            { return s.createdAt }
func (s *Shipment) CreatedBy() kernel.UUID          { return s.createdBy }
func (s *Shipment) StatusChangedBy() *kernel.UUID   { return s.statusChangedBy }
func (s *Shipment) StatusChangedAt() *time.Time     { return s.statusChangedAt }
func (s *Shipment) Version() int                    { return s.version }

// QRCode returns the stored QR image, or nil when none was generated yet.
func (s *Shipment) QRCode() *ImageRef {
	if s.qrCode == nil {
		return nil
	}
	ref := *s.qrCode
	return &ref
}

// Items returns the line items in submission order. The slice is a copy.
func (s *Shipment) Items() []*Item {
	return slices.Clone(s.items)
}

// Item finds a line item by id.
func (s *Shipment) Item(id kernel.UUID) (*Item, error) {
	for _, item := range s.items {
		if item.id.IsEqual(id) {
			return item, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("item", id.String())
}

// RequestTransition moves the shipment to status `to` on behalf of actor.
// On success it returns the appended ledger entry. On failure nothing is
// mutated: an unreachable target yields *InvalidTransitionError.
func (s *Shipment) RequestTransition(to Status, actor kernel.UUID, at time.Time) (StatusChange, error) {
	if err := s.Validate(); err != nil {
		return StatusChange{}, err
	}
	if err := actor.Validate(); err != nil {
		return StatusChange{}, err
	}

	next, err := s.status.TransitionTo(to)
	if err != nil {
		return StatusChange{}, err
	}

	change := newStatusChange(s.id, s.status, next, actor, at)
	changedAt := change.changedAt

	s.status = next
	s.statusChangedBy = &actor
	s.statusChangedAt = &changedAt
	s.pendingChanges = append(s.pendingChanges, change)

	return change, nil
}

// Amend replaces details and items and recomputes totals.
// Items keep their stored image when their id is resubmitted; the images of
// items that are dropped are returned so the caller can delete the files.
func (s *Shipment) Amend(details Details, items []*Item, rate VATRate) ([]ImageRef, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrShipmentIsClosed, s.status)
	}

	previous := s.items
	if err := errors.Join(details.Validate(), validateItems(items)); err != nil {
		return nil, err
	}

	for _, item := range items {
		if !slices.ContainsFunc(previous, func(old *Item) bool { return old.id.IsEqual(item.id) }) {
			item.id = kernel.NewUUID()
		}
	}

	removed := make([]ImageRef, 0)
	for _, old := range previous {
		idx := slices.IndexFunc(items, func(i *Item) bool { return i.id.IsEqual(old.id) })
		switch {
		case idx < 0 && old.image != nil:
			removed = append(removed, *old.image)
		case idx >= 0 && items[idx].image == nil && old.image != nil:
			items[idx].image = old.image
		}
	}

	s.details = details
	s.items = slices.Clone(items)
	s.RecomputeTotals(rate)

	return removed, nil
}

// RecomputeTotals derives subtotal, VAT and total from the current pricing.
func (s *Shipment) RecomputeTotals(rate VATRate) Totals {
	s.totals = s.details.Pricing.Totals(rate)
	return s.totals
}

// AttachItemImage links a stored image to an item and returns the image it
// replaced, if any.
func (s *Shipment) AttachItemImage(itemID kernel.UUID, ref ImageRef) (*ImageRef, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	item, err := s.Item(itemID)
	if err != nil {
		return nil, err
	}
	return item.attachImage(ref), nil
}

// SetQRCode links the generated QR image and returns the one it replaced, if any.
func (s *Shipment) SetQRCode(ref ImageRef) *ImageRef {
	previous := s.qrCode
	s.qrCode = &ref
	return previous
}

// StoredFiles lists every file the shipment references: item images and the QR code.
func (s *Shipment) StoredFiles() []ImageRef {
	files := make([]ImageRef, 0, len(s.items)+1)
	for _, item := range s.items {
		if item.image != nil {
			files = append(files, *item.image)
		}
	}
	if s.qrCode != nil {
		files = append(files, *s.qrCode)
	}
	return files
}

// PendingStatusChanges returns ledger entries not yet written to storage.
func (s *Shipment) PendingStatusChanges() []StatusChange {
	return slices.Clone(s.pendingChanges)
}

// StatusChangedEvents describes the pending ledger entries as integration events.
func (s *Shipment) StatusChangedEvents() []StatusChangedEvent {
	events := make([]StatusChangedEvent, 0, len(s.pendingChanges))
	for _, c := range s.pendingChanges {
		events = append(events, StatusChangedEvent{
			EventID:    c.id,
			ShipmentID: s.id,
			Waybill:    s.waybill.String(),
			OldStatus:  c.oldStatus,
			NewStatus:  c.newStatus,
			ChangedBy:  c.changedBy,
			ChangedAt:  c.changedAt,
		})
	}
	return events
}

// ClearPendingStatusChanges is called once the pending entries have been
// committed and published.
func (s *Shipment) ClearPendingStatusChanges() {
	s.pendingChanges = nil
}

// MarkUpdated advances the optimistic lock after a successful versioned update.
func (s *Shipment) MarkUpdated() {
	s.version++
}

// QRPayload is the structured content encoded into the waybill QR image.
type QRPayload struct {
	Waybill        string `json:"waybill"`
	Sender         string `json:"sender"`
	SenderMobile   string `json:"sender_mobile"`
	Receiver       string `json:"receiver"`
	ReceiverMobile string `json:"receiver_mobile"`
	Destination    string `json:"destination"`
	Total          string `json:"total"`
	OrderBookedBy  string `json:"order_booked_by"`
}

// QRPayload returns what the waybill QR code carries.
func (s *Shipment) QRPayload() QRPayload {
	return QRPayload{
		Waybill:        s.waybill.String(),
		Sender:         s.details.Sender.Name(),
		SenderMobile:   s.details.Sender.Mobile(),
		Receiver:       s.details.Receiver.Name(),
		ReceiverMobile: s.details.Receiver.Mobile(),
		Destination:    s.details.Destination.String(),
		Total:          s.totals.Total.String(),
		OrderBookedBy:  s.details.Booking.OrderBookedBy,
	}
}

// Encode renders the payload as compact JSON.
func (p QRPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

func (s *Shipment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Shipment) setWaybill(waybill WaybillNumber) error {
	if err := waybill.Validate(); err != nil {
		return err
	}
	s.waybill = waybill
	return nil
}

func (s *Shipment) setCreatedBy(createdBy kernel.UUID) error {
	if err := createdBy.Validate(); err != nil {
		return fmt.Errorf("created by: %w", err)
	}
	s.createdBy = createdBy
	return nil
}

func (s *Shipment) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	s.createdAt = createdAt.UTC()
	return nil
}

func (s *Shipment) setDetails(details Details) error {
	if err := details.Validate(); err != nil {
		return err
	}
	s.details = details
	return nil
}

func (s *Shipment) setItems(items []*Item) error {
	if err := validateItems(items); err != nil {
		return err
	}
	s.items = slices.Clone(items)
	return nil
}

func validateItems(items []*Item) error {
	seen := make(map[kernel.UUID]struct{}, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, ok := seen[item.id]; ok {
			return errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("item %s is listed twice", item.id))
		}
		seen[item.id] = struct{}{}
	}
	return nil
}
