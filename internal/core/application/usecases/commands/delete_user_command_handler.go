package commands

import (
	"context"
	"fmt"
)

// DeleteUserCommandHandler removes an account. Nobody deletes themselves,
// only superusers delete superusers, and the last administrator stays.
type DeleteUserCommandHandler struct {
	uowFactory UserUoWFactory
}

func NewDeleteUserCommandHandler(uowFactory UserUoWFactory) DeleteUserCommandHandler {
	return DeleteUserCommandHandler{uowFactory: uowFactory}
}

func (h *DeleteUserCommandHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if cmd.ActorID().IsEqual(cmd.UserID()) {
		return ErrCannotDeleteOwnAccount
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
		return fmt.Errorf("%w: %s cannot delete %s", ErrActorIsNotAuthorized, actor.Username(), target.Username())
	}

	if target.IsAdmin() {
		admins, err := users.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdministrator
		}
	}

	if err = users.Delete(ctx, target.ID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
