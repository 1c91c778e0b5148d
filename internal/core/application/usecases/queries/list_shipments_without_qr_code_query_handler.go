package queries

import (
	"context"

	"exportdocs/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListShipmentsWithoutQRCodeQueryHandler struct {
	db *gorm.DB
}

func NewListShipmentsWithoutQRCodeQueryHandler(db *gorm.DB) ListShipmentsWithoutQRCodeQueryHandler {
	return ListShipmentsWithoutQRCodeQueryHandler{db: db}
}

func (h ListShipmentsWithoutQRCodeQueryHandler) Handle(
	ctx context.Context,
	query ListShipmentsWithoutQRCodeQuery,
) ([]kernel.UUID, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var raw []uuid.UUID
	if err := h.db.WithContext(ctx).Raw(`
		SELECT id
		FROM shipments
		WHERE qr_file_id IS NULL
		ORDER BY created_at
		LIMIT ?
	`, query.Limit()).Scan(&raw).Error; err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		converted, err := kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, converted)
	}
	return ids, nil
}
