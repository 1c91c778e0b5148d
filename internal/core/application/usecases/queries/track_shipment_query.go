package queries

import (
	"errors"
	"strings"
	"time"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrTrackShipmentQueryIsNotConstructed = errors.New(
		"TrackShipmentQuery must be created via NewTrackShipmentQuery constructor",
	)
)

// TrackShipmentQuery looks a shipment up by waybill for the public tracking
// page. The code is upper-cased before parsing so "ex000042" is accepted.
type TrackShipmentQuery struct {
	waybill shipment.WaybillNumber

	guard guard.ConstructorGuard
}

func NewTrackShipmentQuery(waybill string) (TrackShipmentQuery, error) {
	parsed, err := shipment.ParseWaybillNumber(strings.ToUpper(strings.TrimSpace(waybill)))
	if err != nil {
		return TrackShipmentQuery{}, err
	}
	return TrackShipmentQuery{waybill: parsed, guard: guard.NewConstructorGuard()}, nil
}

func (q TrackShipmentQuery) Validate() error {
	return q.guard.Validate(ErrTrackShipmentQueryIsNotConstructed)
}

func (q TrackShipmentQuery) Waybill() shipment.WaybillNumber { return q.waybill }

// TrackingView exposes what an anonymous visitor may see: parties by name
// and business only, no contact details, no pricing.
type TrackingView struct {
	Waybill     string
	Status      shipment.Status
	CreatedAt   time.Time
	Destination string
	Sender      TrackingParty
	Receiver    TrackingParty
	Items       []TrackingItem
	Timeline    []TrackingEvent
}

type TrackingParty struct {
	Name     string
	Business string
}

type TrackingItem struct {
	Description string
	Quantity    int
}

// TrackingEvent is a ledger entry without the acting user.
type TrackingEvent struct {
	Status    shipment.Status
	ChangedAt time.Time
}
