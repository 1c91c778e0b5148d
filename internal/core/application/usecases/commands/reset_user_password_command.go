package commands

import (
	"errors"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrResetUserPasswordCommandIsNotConstructed = errors.New(
		"ResetUserPasswordCommand must be created via NewResetUserPasswordCommand constructor",
	)
)

// ResetUserPasswordCommand sets a new password on someone else's account.
type ResetUserPasswordCommand struct { //nolint:recvcheck //using for validation
	actorID     kernel.UUID
	userID      kernel.UUID
	newPassword string

	guard guard.ConstructorGuard
}

func NewResetUserPasswordCommand(actorID, userID kernel.UUID, newPassword string) (ResetUserPasswordCommand, error) {
	var passwordErr error
	if newPassword == "" {
		passwordErr = errs.NewValueIsRequiredError("new password")
	}
	if err := errors.Join(actorID.Validate(), userID.Validate(), passwordErr); err != nil {
		return ResetUserPasswordCommand{}, err
	}

	return ResetUserPasswordCommand{
		actorID:     actorID,
		userID:      userID,
		newPassword: newPassword,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ResetUserPasswordCommand) Validate() error {
	return c.guard.Validate(ErrResetUserPasswordCommandIsNotConstructed)
}

func (c ResetUserPasswordCommand) ActorID() kernel.UUID { return c.actorID }
func (c ResetUserPasswordCommand) UserID() kernel.UUID  { return c.userID }
func (c ResetUserPasswordCommand) NewPassword() string  { return c.newPassword }
