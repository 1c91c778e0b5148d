package commands

import (
	"context"
	"fmt"
)

// ResetUserPasswordCommandHandler lets an administrator replace a password.
// Superuser accounts can only be reset by a superuser.
type ResetUserPasswordCommandHandler struct {
	uowFactory UserUoWFactory
}

func NewResetUserPasswordCommandHandler(uowFactory UserUoWFactory) ResetUserPasswordCommandHandler {
	return ResetUserPasswordCommandHandler{uowFactory: uowFactory}
}

func (h *ResetUserPasswordCommandHandler) Handle(ctx context.Context, cmd ResetUserPasswordCommand) error {
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
	actor, err := users.Get(ctx, cmd.ActorID())
	if err != nil {
		return err
	}
	target, err := users.Get(ctx, cmd.UserID())
	if err != nil {
		return err
	}
	if !actor.CanManage(target) {
		return fmt.Errorf("%w: %s cannot reset the password of %s", ErrActorIsNotAuthorized, actor.Username(), target.Username())
	}

	if err = target.ChangePassword(cmd.NewPassword()); err != nil {
		return err
	}
	if err = users.Update(ctx, target); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
