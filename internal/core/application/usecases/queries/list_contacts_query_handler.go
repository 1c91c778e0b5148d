package queries

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type ListContactsQueryHandler struct {
	db *gorm.DB
}

func NewListContactsQueryHandler(db *gorm.DB) ListContactsQueryHandler {
	return ListContactsQueryHandler{db: db}
}

func contactSelect(kind ContactKind) string {
	return fmt.Sprintf(`
		SELECT DISTINCT
			'%[1]s' AS kind,
			%[1]s_name AS name,
			%[1]s_mobile AS mobile,
			COALESCE(%[1]s_email, '') AS email,
			COALESCE(%[1]s_business, '') AS business,
			COALESCE(%[1]s_address, '') AS address,
			COALESCE(customer_group, '') AS customer_group
		FROM shipments`, kind)
}

func contactSource(kind ContactKind) string {
	switch kind {
	case ContactKindSender, ContactKindReceiver:
		return contactSelect(kind)
	default:
		return contactSelect(ContactKindSender) + "\nUNION\n" + contactSelect(ContactKindReceiver)
	}
}

// Handle counts the distinct contacts, then reads the requested page ordered
// by name and mobile.
func (h ListContactsQueryHandler) Handle(ctx context.Context, query ListContactsQuery) (ContactPage, error) {
	if err := query.Validate(); err != nil {
		return ContactPage{}, err
	}

	source := "(" + contactSource(query.Kind()) + ") AS contacts"
	db := h.db.WithContext(ctx)

	var total int64
	if err := db.Raw(`SELECT count(*) FROM ` + source).Scan(&total).Error; err != nil {
		return ContactPage{}, err
	}

	var rows []struct {
		Kind          string
		Name          string
		Mobile        string
		Email         string
		Business      string
		Address       string
		CustomerGroup string
	}
	if err := db.Raw(`
		SELECT kind, name, mobile, email, business, address, customer_group
		FROM `+source+`
		ORDER BY lower(name), mobile, kind, business, email, address, customer_group
		LIMIT ? OFFSET ?
	`, query.PerPage(), query.offset()).Scan(&rows).Error; err != nil {
		return ContactPage{}, err
	}

	page := ContactPage{
		Items:      make([]ContactEntry, 0, len(rows)),
		Page:       query.Page(),
		PerPage:    query.PerPage(),
		Total:      total,
		TotalPages: int((total + int64(query.PerPage()) - 1) / int64(query.PerPage())),
	}
	for _, row := range rows {
		page.Items = append(page.Items, ContactEntry{
			Kind:          ContactKind(row.Kind),
			Name:          row.Name,
			Mobile:        row.Mobile,
			Email:         row.Email,
			Business:      row.Business,
			Address:       row.Address,
			CustomerGroup: row.CustomerGroup,
		})
	}
	return page, nil
}
