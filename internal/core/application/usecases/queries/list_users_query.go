package queries

import (
	"errors"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrListUsersQueryIsNotConstructed = errors.New(
		"ListUsersQuery must be created via NewListUsersQuery constructor",
	)

	// ErrActorIsNotAdministrator is returned when a non-administrator asks for
	// the account list.
	ErrActorIsNotAdministrator = errors.New("listing accounts requires an administrator")
)

type ListUsersQuery struct {
	actorID kernel.UUID

	guard guard.ConstructorGuard
}

func NewListUsersQuery(actorID kernel.UUID) (ListUsersQuery, error) {
	if err := actorID.Validate(); err != nil {
		return ListUsersQuery{}, err
	}
	return ListUsersQuery{actorID: actorID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListUsersQuery) Validate() error {
	return q.guard.Validate(ErrListUsersQueryIsNotConstructed)
}

func (q ListUsersQuery) ActorID() kernel.UUID { return q.actorID }

// UserSummary is an account without its password hash.
type UserSummary struct {
	ID          kernel.UUID
	Username    string
	Name        string
	IsAdmin     bool
	IsSuperuser bool
	CreatedAt   time.Time
}
