package queries

import (
	"errors"

	"exportdocs/internal/pkg/guard"
)

var (
	ErrNextWaybillNumberQueryIsNotConstructed = errors.New(
		"NextWaybillNumberQuery must be created via NewNextWaybillNumberQuery constructor",
	)
)

// NextWaybillNumberQuery previews the code the next created shipment would
// receive. Nothing is reserved: a concurrent create may take it first.
type NextWaybillNumberQuery struct {
	guard guard.ConstructorGuard
}

func NewNextWaybillNumberQuery() NextWaybillNumberQuery {
	return NextWaybillNumberQuery{guard: guard.NewConstructorGuard()}
}

func (q NextWaybillNumberQuery) Validate() error {
	return q.guard.Validate(ErrNextWaybillNumberQueryIsNotConstructed)
}
