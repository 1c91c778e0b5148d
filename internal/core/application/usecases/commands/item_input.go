package commands

import (
	"errors"
	"fmt"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"

	"github.com/shopspring/decimal"
)

// ItemInput is one submitted line item. On amendment the ID of an existing
// item keeps that item and its stored image; any other ID is replaced by a
// generated one. New shipments always get generated item IDs.
type ItemInput struct {
	ID          kernel.UUID
	Description string
	Value       kernel.Money
	Quantity    int
	Weight      decimal.Decimal
}

func buildItems(inputs []ItemInput, keepIDs bool) ([]*shipment.Item, error) {
	items := make([]*shipment.Item, 0, len(inputs))
	var errList []error
	for i, in := range inputs {
		id := in.ID
		if !keepIDs || id.IsZero() {
			id = kernel.NewUUID()
		}
		item, err := shipment.NewItem(id, in.Description, in.Value, in.Quantity, in.Weight)
		if err != nil {
			errList = append(errList, fmt.Errorf("item %d: %w", i+1, err))
			continue
		}
		items = append(items, item)
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return items, nil
}
