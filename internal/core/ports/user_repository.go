package ports

import (
	"context"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/user"
)

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {
	// Add persists a new user. Returns ErrDuplicateUsername when the username is taken.
	Add(ctx context.Context, aggregate *user.User) error

	// Get retrieves a user by identifier.
	Get(ctx context.Context, id kernel.UUID) (*user.User, error)

	// GetByUsername retrieves a user by login name.
	GetByUsername(ctx context.Context, username string) (*user.User, error)

	// Update saves the name, password hash and role of an existing user.
	Update(ctx context.Context, aggregate *user.User) error

	// Delete removes a user. Shipments and ledger rows keep the bare id.
	Delete(ctx context.Context, id kernel.UUID) error

	// CountAdmins counts administrators and superusers, locking their rows
	// until the transaction ends so concurrent deletions serialize.
	CountAdmins(ctx context.Context) (int, error)
}
