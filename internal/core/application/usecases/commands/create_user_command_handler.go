package commands

import (
	"context"
	"fmt"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/user"
)

// CreateUserCommandHandler persists a new account.
// A taken username yields ports.ErrDuplicateUsername.
type CreateUserCommandHandler struct {
	uowFactory UserUoWFactory
}

func NewCreateUserCommandHandler(uowFactory UserUoWFactory) CreateUserCommandHandler {
	return CreateUserCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *CreateUserCommandHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*user.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := user.NewUser(kernel.NewUUID(), cmd.Username(), cmd.Name(), cmd.Password(), cmd.Role())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	users := uow.UserRepository()
	if !cmd.IsBootstrap() {
		actor, err := users.Get(ctx, cmd.ActorID())
		if err != nil {
			return nil, err
		}
		if !actor.CanGrant(cmd.Role()) {
			return nil, fmt.Errorf("%w: %s cannot create this account", ErrActorIsNotAuthorized, actor.Username())
		}
	}

	if err = users.Add(ctx, u); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return u, nil
}
