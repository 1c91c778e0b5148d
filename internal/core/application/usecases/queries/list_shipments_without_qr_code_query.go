package queries

import (
	"errors"

	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrListShipmentsWithoutQRCodeQueryIsNotConstructed = errors.New(
		"ListShipmentsWithoutQRCodeQuery must be created via NewListShipmentsWithoutQRCodeQuery constructor",
	)
)

// ListShipmentsWithoutQRCodeQuery selects up to limit shipments that have
// no QR code yet, oldest first.
type ListShipmentsWithoutQRCodeQuery struct {
	limit int

	guard guard.ConstructorGuard
}

func NewListShipmentsWithoutQRCodeQuery(limit int) (ListShipmentsWithoutQRCodeQuery, error) {
	if limit < 1 || limit > MaxPerPage {
		return ListShipmentsWithoutQRCodeQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPerPage)
	}
	return ListShipmentsWithoutQRCodeQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q ListShipmentsWithoutQRCodeQuery) Validate() error {
	return q.guard.Validate(ErrListShipmentsWithoutQRCodeQueryIsNotConstructed)
}

func (q ListShipmentsWithoutQRCodeQuery) Limit() int { return q.limit }
