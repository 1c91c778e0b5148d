package commands

import (
	"errors"
	"fmt"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrChangePasswordCommandIsNotConstructed = errors.New(
		"ChangePasswordCommand must be created via NewChangePasswordCommand constructor",
	)

	// ErrCurrentPasswordIsWrong is returned when the caller fails to confirm
	// their existing password.
	ErrCurrentPasswordIsWrong = errs.NewValueIsInvalidErrorWithCause("current password", errors.New("does not match"))
)

// ChangePasswordCommand is a user replacing their own password.
type ChangePasswordCommand struct { //nolint:recvcheck //using for validation
	userID          kernel.UUID
	currentPassword string
	newPassword     string

	guard guard.ConstructorGuard
}

// NewChangePasswordCommand requires the new password to be typed twice.
func NewChangePasswordCommand(userID kernel.UUID, currentPassword, newPassword, confirmation string) (ChangePasswordCommand, error) {
	var currentErr, newErr, confirmErr error
	if currentPassword == "" {
		currentErr = errs.NewValueIsRequiredError("current password")
	}
	if newPassword == "" {
		newErr = errs.NewValueIsRequiredError("new password")
	} else if newPassword != confirmation {
		confirmErr = errs.NewValueIsInvalidErrorWithCause("password confirmation", fmt.Errorf("does not match the new password"))
	}
	if err := errors.Join(userID.Validate(), currentErr, newErr, confirmErr); err != nil {
		return ChangePasswordCommand{}, err
	}

	return ChangePasswordCommand{
		userID:          userID,
		currentPassword: currentPassword,
		newPassword:     newPassword,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c ChangePasswordCommand) Validate() error {
	return c.guard.Validate(ErrChangePasswordCommandIsNotConstructed)
}

func (c ChangePasswordCommand) UserID() kernel.UUID     { return c.userID }
func (c ChangePasswordCommand) CurrentPassword() string { return c.currentPassword }
func (c ChangePasswordCommand) NewPassword() string     { return c.newPassword }
