package commands

import (
	"errors"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrDeleteUserCommandIsNotConstructed = errors.New(
		"DeleteUserCommand must be created via NewDeleteUserCommand constructor",
	)

	// ErrCannotDeleteOwnAccount is returned when the actor targets themselves.
	ErrCannotDeleteOwnAccount = errors.New("cannot delete your own account")

	// ErrLastAdministrator is returned when a deletion would leave no administrator.
	ErrLastAdministrator = errors.New("cannot delete the last administrator")
)

type DeleteUserCommand struct { //nolint:recvcheck //using for validation
	actorID kernel.UUID
	userID  kernel.UUID

	guard guard.ConstructorGuard
}

func NewDeleteUserCommand(actorID, userID kernel.UUID) (DeleteUserCommand, error) {
	if err := errors.Join(actorID.Validate(), userID.Validate()); err != nil {
		return DeleteUserCommand{}, err
	}
	return DeleteUserCommand{
		actorID: actorID,
		userID:  userID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c DeleteUserCommand) Validate() error {
	return c.guard.Validate(ErrDeleteUserCommandIsNotConstructed)
}

func (c DeleteUserCommand) ActorID() kernel.UUID { return c.actorID }
func (c DeleteUserCommand) UserID() kernel.UUID  { return c.userID }
