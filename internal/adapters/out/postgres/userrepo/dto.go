// Package userrepo persists user accounts with GORM.
package userrepo

import (
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/user"

	"github.com/google/uuid"
)

const usernameUniqueIndex = "idx_users_username"

// UserDTO is a row of the users table.
type UserDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_users_username"`
	Name         string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsAdmin      bool      `gorm:"not null;default:false"`
	IsSuperuser  bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
}

func (UserDTO) TableName() string {
	return "users"
}

func fromDomain(u *user.User) UserDTO {
	return UserDTO{
		ID:           u.ID().Bytes(),
		Username:     u.Username(),
		Name:         u.Name(),
		PasswordHash: u.PasswordHash(),
		IsAdmin:      u.Role().Admin,
		IsSuperuser:  u.Role().Superuser,
	}
}

func toDomain(dto UserDTO) (*user.User, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return user.RestoreUser(id, dto.Username, dto.Name, dto.PasswordHash, user.Role{
		Admin:     dto.IsAdmin,
		Superuser: dto.IsSuperuser,
	})
}
