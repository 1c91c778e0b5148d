package queries

import (
	"context"
	"time"

	"exportdocs/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListUsersQueryHandler struct {
	db *gorm.DB
}

func NewListUsersQueryHandler(db *gorm.DB) ListUsersQueryHandler {
	return ListUsersQueryHandler{db: db}
}

// Handle lists every account ordered by username. The actor's role is read
// from the database, not from the session.
func (h ListUsersQueryHandler) Handle(ctx context.Context, query ListUsersQuery) ([]UserSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	db := h.db.WithContext(ctx)

	var admins int64
	if err := db.Raw(`
		SELECT count(*) FROM users WHERE id = ? AND (is_admin OR is_superuser)
	`, query.ActorID().Bytes()).Scan(&admins).Error; err != nil {
		return nil, err
	}
	if admins == 0 {
		return nil, ErrActorIsNotAdministrator
	}

	var rows []struct {
		ID          uuid.UUID
		Username    string
		Name        string
		IsAdmin     bool
		IsSuperuser bool
		CreatedAt   time.Time
	}
	if err := db.Raw(`
		SELECT
			id,
			username,
			name,
			is_admin,
			is_superuser,
			created_at
		FROM users
		ORDER BY username
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]UserSummary, 0, len(rows))
	for _, row := range rows {
		id, err := kernel.UUIDFromBytes(row.ID[:])
		if err != nil {
			return nil, err
		}
		users = append(users, UserSummary{
			ID:          id,
			Username:    row.Username,
			Name:        row.Name,
			IsAdmin:     row.IsAdmin,
			IsSuperuser: row.IsSuperuser,
			CreatedAt:   row.CreatedAt,
		})
	}
	return users, nil
}
