package services

import (
	"exportdocs/internal/core/domain/model/shipment"
)

// WaybillSequencer hands out waybill numbers under a configured prefix.
// It does not serialize callers: the persistence layer must hold the
// numbering lock between reading the last number and inserting the next one.
type WaybillSequencer struct {
	prefix string
}

// NewWaybillSequencer validates prefix (two upper-case letters).
func NewWaybillSequencer(prefix string) (WaybillSequencer, error) {
	if err := shipment.ValidateWaybillPrefix(prefix); err != nil {
		return WaybillSequencer{}, err
	}
	return WaybillSequencer{prefix: prefix}, nil
}

func (s WaybillSequencer) Prefix() string {
	return s.prefix
}

// Next returns the code following last, or the first code when last is nil.
func (s WaybillSequencer) Next(last *shipment.WaybillNumber) (shipment.WaybillNumber, error) {
	prefix := s.prefix
	if prefix == "" {
		prefix = shipment.DefaultWaybillPrefix
	}
	return shipment.NextWaybillNumber(prefix, last)
}
