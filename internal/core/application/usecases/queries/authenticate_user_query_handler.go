package queries

import (
	"context"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRow struct {
	ID           uuid.UUID
	Username     string
	Name         string
	PasswordHash string
	IsAdmin      bool
	IsSuperuser  bool
}

type AuthenticateUserQueryHandler struct {
	db *gorm.DB
}

func NewAuthenticateUserQueryHandler(db *gorm.DB) AuthenticateUserQueryHandler {
	return AuthenticateUserQueryHandler{db: db}
}

// Handle returns ErrInvalidCredentials for an unknown user or a wrong password.
func (h AuthenticateUserQueryHandler) Handle(ctx context.Context, query AuthenticateUserQuery) (user.Authenticatable, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []userRow
	if err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			username,
			name,
			password_hash,
			is_admin,
			is_superuser
		FROM users
		WHERE username = ?
	`, query.Username()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrInvalidCredentials
	}
	row := rows[0]

	id, err := kernel.UUIDFromBytes(row.ID[:])
	if err != nil {
		return nil, err
	}
	account, err := user.RestoreUser(id, row.Username, row.Name, row.PasswordHash,
		user.Role{Admin: row.IsAdmin, Superuser: row.IsSuperuser})
	if err != nil {
		return nil, err
	}
	if !account.CheckPassword(query.Password()) {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}
