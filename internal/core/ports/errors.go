package ports

import "errors"

var (
	// ErrConcurrentModification is returned when a versioned update finds the
	// row changed since it was read. The unit of work must be rolled back.
	ErrConcurrentModification = errors.New("shipment was modified concurrently")

	// ErrDuplicateWaybill is returned when the waybill unique index rejects an insert.
	ErrDuplicateWaybill = errors.New("waybill number already exists")

	// ErrDuplicateUsername is returned when the username unique index rejects an insert.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrStoredDataIsCorrupt is returned when a persisted value no longer
	// satisfies the domain rules, such as a malformed stored waybill number.
	ErrStoredDataIsCorrupt = errors.New("stored data is corrupt")
)
