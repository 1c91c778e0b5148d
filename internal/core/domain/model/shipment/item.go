package shipment

import (
	"errors"
	"fmt"
	"strings"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// ImageRef points at a file held by the image storage collaborator.
type ImageRef struct {
	fileID   string
	filename string
}

func NewImageRef(fileID, filename string) (ImageRef, error) {
	if strings.TrimSpace(fileID) == "" {
		return ImageRef{}, errs.NewValueIsRequiredError("file id")
	}
	return ImageRef{fileID: fileID, filename: filename}, nil
}

func (r ImageRef) FileID() string   { return r.fileID }
func (r ImageRef) Filename() string { return r.filename }

// Item is a line of goods in a shipment. It is owned by exactly one shipment
// and removed with it.
type Item struct {
	id          kernel.UUID
	description string
	value       kernel.Money
	quantity    int
	weight      decimal.Decimal
	image       *ImageRef

	isConstructed bool
}

// NewItem validates a line item. Quantity must be positive and weight (kg)
// must not be negative.
func NewItem(id kernel.UUID, description string, value kernel.Money, quantity int, weight decimal.Decimal) (*Item, error) {
	item := &Item{isConstructed: true}

	if err := errors.Join(
		item.setID(id),
		item.setDescription(description),
		item.setQuantity(quantity),
		item.setWeight(weight),
	); err != nil {
		return nil, err
	}
	item.value = value

	return item, nil
}

// RestoreItem rebuilds an item from persistence.
func RestoreItem(
	id kernel.UUID,
	description string,
	value kernel.Money,
	quantity int,
	weight decimal.Decimal,
	image *ImageRef,
) (*Item, error) {
	item, err := NewItem(id, description, value, quantity, weight)
	if err != nil {
		return nil, err
	}
	item.image = image
	return item, nil
}

func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

func (i *Item) ID() kernel.UUID         { return i.id }
func (i *Item) Description() string     { return i.description }
func (i *Item) Value() kernel.Money     { return i.value }
func (i *Item) Quantity() int           { return i.quantity }
func (i *Item) Weight() decimal.Decimal { return i.weight }

// Image returns the stored image reference, or nil.
func (i *Item) Image() *ImageRef {
	if i.image == nil {
		return nil
	}
	ref := *i.image
	return &ref
}

// LineValue is value × quantity.
func (i *Item) LineValue() kernel.Money {
	return i.value.Mul(decimal.NewFromInt(int64(i.quantity)))
}

func (i *Item) attachImage(ref ImageRef) *ImageRef {
	previous := i.image
	i.image = &ref
	return previous
}

func (i *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Item) setDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return errs.NewValueIsRequiredError("item description")
	}
	i.description = description
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("item quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setWeight(weight decimal.Decimal) error {
	if weight.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("item weight", fmt.Errorf("%s is negative", weight))
	}
	i.weight = weight
	return nil
}
