package queries

import (
	"context"
	"strings"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListShipmentsQueryHandler struct {
	db *gorm.DB
}

func NewListShipmentsQueryHandler(db *gorm.DB) ListShipmentsQueryHandler {
	return ListShipmentsQueryHandler{db: db}
}

// Handle counts the matching rows, then reads the requested page.
func (h ListShipmentsQueryHandler) Handle(ctx context.Context, query ListShipmentsQuery) (ShipmentPage, error) {
	if err := query.Validate(); err != nil {
		return ShipmentPage{}, err
	}

	filter, args := listFilter(query)
	db := h.db.WithContext(ctx)

	var total int64
	if err := db.Raw(`SELECT count(*) FROM shipments s `+filter, args...).Scan(&total).Error; err != nil {
		return ShipmentPage{}, err
	}

	rows, err := db.Raw(`
		SELECT
			s.id,
			s.waybill_number,
			s.status,
			s.sender_name,
			s.receiver_name,
			s.destination_country,
			s.total,
			s.qr_file_id IS NOT NULL,
			s.created_at
		FROM shipments s `+filter+`
		ORDER BY s.created_at DESC, s.waybill_number DESC
		LIMIT ? OFFSET ?
	`, append(args, query.PerPage(), query.offset())...).Rows()
	if err != nil {
		return ShipmentPage{}, err
	}
	defer rows.Close()

	page := ShipmentPage{
		Items:      make([]ShipmentSummary, 0, query.PerPage()),
		Page:       query.Page(),
		PerPage:    query.PerPage(),
		Total:      total,
		TotalPages: int((total + int64(query.PerPage()) - 1) / int64(query.PerPage())),
	}

	for rows.Next() {
		var summary ShipmentSummary
		var id uuid.UUID
		var status string
		var amount decimal.Decimal

		err = rows.Scan(
			&id,
			&summary.Waybill,
			&status,
			&summary.SenderName,
			&summary.ReceiverName,
			&summary.Destination,
			&amount,
			&summary.QRCodeReady,
			&summary.CreatedAt,
		)
		if err != nil {
			return ShipmentPage{}, err
		}

		if summary.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return ShipmentPage{}, err
		}
		if summary.Status, err = shipment.ParseStatus(status); err != nil {
			return ShipmentPage{}, err
		}
		summary.Total = kernel.RestoreMoney(amount)
		page.Items = append(page.Items, summary)
	}

	if err = rows.Err(); err != nil {
		return ShipmentPage{}, err
	}
	return page, nil
}

func listFilter(query ListShipmentsQuery) (string, []any) {
	var clauses []string
	var args []any

	if status := query.Status(); status != nil {
		clauses = append(clauses, "s.status = ?")
		args = append(args, status.String())
	}
	if search := query.Search(); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		clauses = append(clauses, `(
			s.waybill_number ILIKE ? OR
			s.sender_name ILIKE ? OR s.sender_business ILIKE ? OR
			s.receiver_name ILIKE ? OR s.receiver_business ILIKE ? OR
			s.destination_country ILIKE ? OR s.destination_address ILIKE ?
		)`)
		for range 7 {
			args = append(args, pattern)
		}
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
