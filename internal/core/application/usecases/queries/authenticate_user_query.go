package queries

import (
	"errors"
	"strings"

	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrAuthenticateUserQueryIsNotConstructed = errors.New(
		"AuthenticateUserQuery must be created via NewAuthenticateUserQuery constructor",
	)

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthenticateUserQuery checks a username and password pair, as sent in an
// HTTP basic-auth header.
type AuthenticateUserQuery struct {
	username string
	password string

	guard guard.ConstructorGuard
}

func NewAuthenticateUserQuery(username, password string) (AuthenticateUserQuery, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return AuthenticateUserQuery{}, errs.NewValueIsRequiredError("username")
	}
	if password == "" {
		return AuthenticateUserQuery{}, errs.NewValueIsRequiredError("password")
	}
	return AuthenticateUserQuery{username: username, password: password, guard: guard.NewConstructorGuard()}, nil
}

func (q AuthenticateUserQuery) Validate() error {
	return q.guard.Validate(ErrAuthenticateUserQueryIsNotConstructed)
}

func (q AuthenticateUserQuery) Username() string { return q.username }
func (q AuthenticateUserQuery) Password() string { return q.password }
