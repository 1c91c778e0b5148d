package commands

import (
	"errors"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrGenerateQRCodeCommandIsNotConstructed = errors.New(
		"GenerateQRCodeCommand must be created via NewGenerateQRCodeCommand constructor",
	)
)

// GenerateQRCodeCommand renders the waybill QR image of a shipment.
// Without force an existing QR image is kept.
type GenerateQRCodeCommand struct { //nolint:recvcheck //using for validation
	shipmentID kernel.UUID
	force      bool

	guard guard.ConstructorGuard
}

func NewGenerateQRCodeCommand(shipmentID kernel.UUID, force bool) (GenerateQRCodeCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return GenerateQRCodeCommand{}, err
	}
	return GenerateQRCodeCommand{
		shipmentID: shipmentID,
		force:      force,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c GenerateQRCodeCommand) Validate() error {
	return c.guard.Validate(ErrGenerateQRCodeCommandIsNotConstructed)
}

func (c GenerateQRCodeCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c GenerateQRCodeCommand) Force() bool             { return c.force }
