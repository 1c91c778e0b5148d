package commands

import (
	"errors"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrCreateUserCommandIsNotConstructed = errors.New(
		"CreateUserCommand must be created via NewCreateUserCommand constructor",
	)
)

// CreateUserCommand registers an account. The password is hashed by the handler.
//
// Accounts created through NewCreateUserCommand are authorized against the
// acting user; NewBootstrapUserCommand skips that check and is meant for the
// account seeded at startup.
type CreateUserCommand struct { //nolint:recvcheck //using for validation
	actorID   kernel.UUID
	bootstrap bool
	username  string
	name      string
	password  string
	role      user.Role

	guard guard.ConstructorGuard
}

func NewCreateUserCommand(actorID kernel.UUID, username, name, password string, role user.Role) (CreateUserCommand, error) {
	if err := actorID.Validate(); err != nil {
		return CreateUserCommand{}, err
	}
	cmd, err := newCreateUserCommand(username, name, password, role)
	if err != nil {
		return CreateUserCommand{}, err
	}
	cmd.actorID = actorID
	return cmd, nil
}

func NewBootstrapUserCommand(username, name, password string, role user.Role) (CreateUserCommand, error) {
	cmd, err := newCreateUserCommand(username, name, password, role)
	if err != nil {
		return CreateUserCommand{}, err
	}
	cmd.bootstrap = true
	return cmd, nil
}

func newCreateUserCommand(username, name, password string, role user.Role) (CreateUserCommand, error) {
	var usernameErr, nameErr, passwordErr error
	if username == "" {
		usernameErr = errs.NewValueIsRequiredError("username")
	}
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}
	if password == "" {
		passwordErr = errs.NewValueIsRequiredError("password")
	}
	if err := errors.Join(usernameErr, nameErr, passwordErr); err != nil {
		return CreateUserCommand{}, err
	}

	return CreateUserCommand{
		username: username,
		name:     name,
		password: password,
		role:     role,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CreateUserCommand) Validate() error {
	return c.guard.Validate(ErrCreateUserCommandIsNotConstructed)
}

func (c CreateUserCommand) ActorID() kernel.UUID { return c.actorID }
func (c CreateUserCommand) IsBootstrap() bool    { return c.bootstrap }
func (c CreateUserCommand) Username() string     { return c.username }
func (c CreateUserCommand) Name() string         { return c.name }
func (c CreateUserCommand) Password() string     { return c.password }
func (c CreateUserCommand) Role() user.Role      { return c.role }
