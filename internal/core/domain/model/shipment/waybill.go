package shipment

import (
	"fmt"
	"regexp"
	"strconv"

	"exportdocs/internal/pkg/errs"
)

const (
	// DefaultWaybillPrefix is used when no prefix is configured.
	DefaultWaybillPrefix = "EX"

	// WaybillDigits is the zero-padded width of the sequence part.
	WaybillDigits = 6
)

var (
	// ErrWaybillNumberIsMalformed is returned when a stored or submitted code
	// does not match <prefix><digits>. Numbering never guesses past it.
	ErrWaybillNumberIsMalformed = errs.NewValueIsInvalidError("waybill number")

	waybillPattern = regexp.MustCompile(`^([A-Z]{2})([0-9]+)$`)
	prefixPattern  = regexp.MustCompile(`^[A-Z]{2}$`)
)

// WaybillNumber is the human-readable shipment identifier: a two-letter
// prefix followed by a sequence number padded to WaybillDigits.
type WaybillNumber struct {
	prefix   string
	sequence int
}

// ValidateWaybillPrefix checks that prefix is two upper-case letters.
func ValidateWaybillPrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return errs.NewValueIsInvalidErrorWithCause("waybill prefix", fmt.Errorf("%q is not two upper-case letters", prefix))
	}
	return nil
}

// FirstWaybillNumber returns sequence 1 for prefix, e.g. EX000001.
func FirstWaybillNumber(prefix string) (WaybillNumber, error) {
	if err := ValidateWaybillPrefix(prefix); err != nil {
		return WaybillNumber{}, err
	}
	return WaybillNumber{prefix: prefix, sequence: 1}, nil
}

// ParseWaybillNumber parses a code such as "EX000042".
func ParseWaybillNumber(s string) (WaybillNumber, error) {
	m := waybillPattern.FindStringSubmatch(s)
	if m == nil {
		return WaybillNumber{}, fmt.Errorf("%w: %q does not match <prefix><digits>", ErrWaybillNumberIsMalformed, s)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil || seq < 1 {
		return WaybillNumber{}, fmt.Errorf("%w: %q has no usable sequence", ErrWaybillNumberIsMalformed, s)
	}
	return WaybillNumber{prefix: m[1], sequence: seq}, nil
}

// NextWaybillNumber continues the sequence of last under prefix.
// With no prior shipment it returns the first code of the sequence.
func NextWaybillNumber(prefix string, last *WaybillNumber) (WaybillNumber, error) {
	if last == nil {
		return FirstWaybillNumber(prefix)
	}
	if err := last.Validate(); err != nil {
		return WaybillNumber{}, err
	}
	if err := ValidateWaybillPrefix(prefix); err != nil {
		return WaybillNumber{}, err
	}
	return WaybillNumber{prefix: prefix, sequence: last.sequence + 1}, nil
}

// Next returns the following code under the same prefix.
func (w WaybillNumber) Next() WaybillNumber {
	return WaybillNumber{prefix: w.prefix, sequence: w.sequence + 1}
}

func (w WaybillNumber) Prefix() string {
	return w.prefix
}

func (w WaybillNumber) Sequence() int {
	return w.sequence
}

// Validate rejects the zero value.
func (w WaybillNumber) Validate() error {
	if w.sequence < 1 || !prefixPattern.MatchString(w.prefix) {
		return errs.NewValueIsRequiredError("waybill number")
	}
	return nil
}

func (w WaybillNumber) String() string {
	return fmt.Sprintf("%s%0*d", w.prefix, WaybillDigits, w.sequence)
}

func (w WaybillNumber) IsEqual(other WaybillNumber) bool {
	return w == other
}
