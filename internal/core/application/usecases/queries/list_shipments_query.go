package queries

import (
	"errors"
	"strings"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

var (
	ErrListShipmentsQueryIsNotConstructed = errors.New(
		"ListShipmentsQuery must be created via NewListShipmentsQuery constructor",
	)
)

// ListShipmentsQuery pages through shipments, newest first.
//
// A zero page or perPage falls back to the first page of DefaultPerPage rows.
// An empty status lists every status. Search matches the waybill, either
// party's name or business, and the destination, case-insensitively.
//
// Example:
//
//	query, err := NewListShipmentsQuery(2, 25, "in_transit", "acme")
//	if err != nil {
//	    return err
//	}
//	page, err := handler.Handle(ctx, query)
type ListShipmentsQuery struct {
	page    int
	perPage int
	status  *shipment.Status
	search  string

	guard guard.ConstructorGuard
}

func NewListShipmentsQuery(page, perPage int, status, search string) (ListShipmentsQuery, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return ListShipmentsQuery{}, errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded")
	}
	if perPage < 1 || perPage > MaxPerPage {
		return ListShipmentsQuery{}, errs.NewValueIsOutOfRangeError("perPage", perPage, 1, MaxPerPage)
	}

	query := ListShipmentsQuery{
		page:    page,
		perPage: perPage,
		search:  strings.TrimSpace(search),
		guard:   guard.NewConstructorGuard(),
	}
	if status = strings.TrimSpace(status); status != "" {
		parsed, err := shipment.ParseStatus(status)
		if err != nil {
			return ListShipmentsQuery{}, err
		}
		query.status = &parsed
	}
	return query, nil
}

func (q ListShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrListShipmentsQueryIsNotConstructed)
}

func (q ListShipmentsQuery) Page() int                { return q.page }
func (q ListShipmentsQuery) PerPage() int             { return q.perPage }
func (q ListShipmentsQuery) Status() *shipment.Status { return q.status }
func (q ListShipmentsQuery) Search() string           { return q.search }

func (q ListShipmentsQuery) offset() int {
	return (q.page - 1) * q.perPage
}

// ShipmentPage is one page of the shipment list.
type ShipmentPage struct {
	Items      []ShipmentSummary
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

// ShipmentSummary is a list row. Total is the value cached at the last
// write; the detail view recomputes it.
type ShipmentSummary struct {
	ID           kernel.UUID
	Waybill      string
	Status       shipment.Status
	SenderName   string
	ReceiverName string
	Destination  string
	Total        kernel.Money
	QRCodeReady  bool
	CreatedAt    time.Time
}
