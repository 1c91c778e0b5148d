package commands

import (
	"context"
)

type ChangePasswordCommandHandler struct {
	uowFactory UserUoWFactory
}

func NewChangePasswordCommandHandler(uowFactory UserUoWFactory) ChangePasswordCommandHandler {
	return ChangePasswordCommandHandler{uowFactory: uowFactory}
}

// Handle checks the current password before storing the new one.
func (h *ChangePasswordCommandHandler) Handle(ctx context.Context, cmd ChangePasswordCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	users := uow.UserRepository()
	u, err := users.Get(ctx, cmd.UserID())
	if err != nil {
		return err
	}
	if !u.CheckPassword(cmd.CurrentPassword()) {
		return ErrCurrentPasswordIsWrong
	}

	if err = u.ChangePassword(cmd.NewPassword()); err != nil {
		return err
	}
	if err = users.Update(ctx, u); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
