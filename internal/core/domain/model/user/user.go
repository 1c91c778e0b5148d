package user

import (
	"errors"
	"fmt"
	"strings"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var ErrUserIsNotConstructed = errors.New("User must be created via NewUser constructor")

// Authenticatable is what the HTTP layer needs from an identity.
type Authenticatable interface {
	ID() kernel.UUID
	Username() string
	CheckPassword(password string) bool
	IsAdmin() bool
	IsSuperuser() bool
}

// Role selects the capabilities of a user.
type Role struct {
	Admin     bool
	Superuser bool
}

// User is a registered account. Only the bcrypt hash of the password is kept.
type User struct {
	id           kernel.UUID
	username     string
	name         string
	passwordHash string
	role         Role

	isConstructed bool
}

var _ Authenticatable = (*User)(nil)

// NewUser hashes password with bcrypt.DefaultCost.
func NewUser(id kernel.UUID, username, name, password string, role Role) (*User, error) {
	u := &User{role: role, isConstructed: true}

	if err := errors.Join(
		u.setID(id),
		u.setUsername(username),
		u.setName(name),
		u.setPassword(password),
	); err != nil {
		return nil, err
	}

	return u, nil
}

// RestoreUser rebuilds a user from persistence with an existing hash.
func RestoreUser(id kernel.UUID, username, name, passwordHash string, role Role) (*User, error) {
	u := &User{role: role, isConstructed: true}

	var hashErr error
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		hashErr = errs.NewValueIsInvalidErrorWithCause("password hash", err)
	}

	if err := errors.Join(
		u.setID(id),
		u.setUsername(username),
		u.setName(name),
		hashErr,
	); err != nil {
		return nil, err
	}
	u.passwordHash = passwordHash

	return u, nil
}

func (u *User) Validate() error {
	if u == nil || !u.isConstructed {
		return ErrUserIsNotConstructed
	}
	return nil
}

func (u *User) ID() kernel.UUID      { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) Name() string         { return u.name }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() Role           { return u.role }
func (u *User) IsAdmin() bool        { return u.role.Admin || u.role.Superuser }
func (u *User) IsSuperuser() bool    { return u.role.Superuser }

// IsElevated reports whether the role grants any administrative capability.
func (r Role) IsElevated() bool {
	return r.Admin || r.Superuser
}

// CanManage reports whether u may reset the password of, or delete, target.
// Administrators manage ordinary accounts and other administrators; only a
// superuser manages a superuser.
func (u *User) CanManage(target *User) bool {
	if !u.IsAdmin() {
		return false
	}
	return !target.IsSuperuser() || u.IsSuperuser()
}

// CanGrant reports whether u may create an account with role. Granting any
// administrative role takes a superuser.
func (u *User) CanGrant(role Role) bool {
	if !u.IsAdmin() {
		return false
	}
	return !role.IsElevated() || u.IsSuperuser()
}

// CheckPassword compares password with the stored hash in constant time.
func (u *User) CheckPassword(password string) bool {
	if u == nil || u.passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

// ChangePassword replaces the stored hash.
func (u *User) ChangePassword(password string) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return u.setPassword(password)
}

func (u *User) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	u.id = id
	return nil
}

func (u *User) setUsername(username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return errs.NewValueIsRequiredError("username")
	}
	if strings.ContainsAny(username, " :") {
		return errs.NewValueIsInvalidErrorWithCause("username", fmt.Errorf("%q contains a space or colon", username))
	}
	u.username = username
	return nil
}

func (u *User) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	u.name = name
	return nil
}

func (u *User) setPassword(password string) error {
	if len(password) < minPasswordLength {
		return errs.NewValueIsInvalidErrorWithCause("password", fmt.Errorf("must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("password", err)
	}
	u.passwordHash = string(hash)
	return nil
}
