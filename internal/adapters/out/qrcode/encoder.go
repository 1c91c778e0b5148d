// Package qrcode renders shipment QR payloads as PNG images.
package qrcode

import (
	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"

	goqrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 256

var _ ports.QREncoder = Encoder{}

type Encoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

// NewEncoder renders square images of size pixels with medium error recovery.
func NewEncoder(size int) (Encoder, error) {
	if size < 21 {
		return Encoder{}, errs.NewValueIsOutOfRangeError("size", size, 21, "unbounded")
	}
	return Encoder{size: size, level: goqrcode.Medium}, nil
}

func (e Encoder) Encode(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, errs.NewValueIsRequiredError("payload")
	}
	return goqrcode.Encode(string(payload), e.level, e.size)
}
