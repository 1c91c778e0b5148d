package queries

import (
	"errors"
	"fmt"
	"strings"

	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrListContactsQueryIsNotConstructed = errors.New(
		"ListContactsQuery must be created via NewListContactsQuery constructor",
	)
)

// ContactKind selects which side of the shipments feeds the directory.
type ContactKind string

const (
	ContactKindSender   ContactKind = "sender"
	ContactKindReceiver ContactKind = "receiver"
	ContactKindAll      ContactKind = "all"
)

func ParseContactKind(s string) (ContactKind, error) {
	switch kind := ContactKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case "":
		return ContactKindAll, nil
	case ContactKindSender, ContactKindReceiver, ContactKindAll:
		return kind, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("unknown contact type %q", s))
	}
}

// ListContactsQuery pages through the distinct senders and receivers found
// on shipments. Identical contact blocks on many shipments appear once.
type ListContactsQuery struct {
	kind    ContactKind
	page    int
	perPage int

	guard guard.ConstructorGuard
}

func NewListContactsQuery(kind string, page, perPage int) (ListContactsQuery, error) {
	parsed, err := ParseContactKind(kind)
	if err != nil {
		return ListContactsQuery{}, err
	}
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return ListContactsQuery{}, errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded")
	}
	if perPage < 1 || perPage > MaxPerPage {
		return ListContactsQuery{}, errs.NewValueIsOutOfRangeError("perPage", perPage, 1, MaxPerPage)
	}

	return ListContactsQuery{
		kind:    parsed,
		page:    page,
		perPage: perPage,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q ListContactsQuery) Validate() error {
	return q.guard.Validate(ErrListContactsQueryIsNotConstructed)
}

func (q ListContactsQuery) Kind() ContactKind { return q.kind }
func (q ListContactsQuery) Page() int         { return q.page }
func (q ListContactsQuery) PerPage() int      { return q.perPage }

func (q ListContactsQuery) offset() int {
	return (q.page - 1) * q.perPage
}

// ContactPage is one page of the contacts directory.
type ContactPage struct {
	Items      []ContactEntry
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

// ContactEntry is one distinct contact block. Kind is the side it was
// recorded on.
type ContactEntry struct {
	Kind          ContactKind
	Name          string
	Mobile        string
	Email         string
	Business      string
	Address       string
	CustomerGroup string
}
