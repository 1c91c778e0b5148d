package queries

import (
	"context"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/services"

	"gorm.io/gorm"
)

type NextWaybillNumberQueryHandler struct {
	db        *gorm.DB
	sequencer services.WaybillSequencer
}

func NewNextWaybillNumberQueryHandler(db *gorm.DB, sequencer services.WaybillSequencer) NextWaybillNumberQueryHandler {
	return NextWaybillNumberQueryHandler{db: db, sequencer: sequencer}
}

// Handle reads the most recent waybill the same way creation does and
// returns its successor. A malformed stored code is an error.
func (h NextWaybillNumberQueryHandler) Handle(ctx context.Context, query NextWaybillNumberQuery) (string, error) {
	if err := query.Validate(); err != nil {
		return "", err
	}

	var numbers []string
	if err := h.db.WithContext(ctx).Raw(`
		SELECT waybill_number
		FROM shipments
		ORDER BY created_at DESC, length(waybill_number) DESC, waybill_number DESC
		LIMIT 1
	`).Scan(&numbers).Error; err != nil {
		return "", err
	}

	var last *shipment.WaybillNumber
	if len(numbers) > 0 {
		parsed, err := shipment.ParseWaybillNumber(numbers[0])
		if err != nil {
			return "", err
		}
		last = &parsed
	}

	next, err := h.sequencer.Next(last)
	if err != nil {
		return "", err
	}
	return next.String(), nil
}
