package shipment

import (
	"errors"
	"fmt"
	"slices"

	"exportdocs/internal/pkg/errs"
)

// ErrInvalidTransition is matched by every *InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status represents the lifecycle state of a shipment.
//
// State transitions:
//
//	saved ──> pending ──> confirmed ──> processing ──> in_transit ──> delivered
//	  │          │            │              │              │
//	  └──────────┴────────────┴──────────────┴──────────────┴──────> cancelled
//
// Saved is the staging state of drafts; submitted shipments start in Pending.
// Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota
	Saved
	Pending
	Confirmed
	Processing
	InTransit
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Saved:      "saved",
		Pending:    "pending",
		Confirmed:  "confirmed",
		Processing: "processing",
		InTransit:  "in_transit",
		Delivered:  "delivered",
		Cancelled:  "cancelled",
	}
}

// getTransitions returns the allowed targets for every valid status.
// Every valid status has an entry, terminal ones with an empty set.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status][]Status{
		Saved:      {Pending, Cancelled},
		Pending:    {Confirmed, Cancelled},
		Confirmed:  {Processing, Cancelled},
		Processing: {InTransit, Cancelled},
		InTransit:  {Delivered, Cancelled},
		Delivered:  {},
		Cancelled:  {},
	}
}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{Saved, Pending, Confirmed, Processing, InTransit, Delivered, Cancelled}
}

// ParseStatus converts the persisted or wire representation into a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate returns an error for Unknown and any value outside the enumeration.
func (s Status) Validate() error {
	if _, ok := getTransitions()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name used in storage and JSON.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// AllowedTargets returns the statuses reachable in one step. The result is a copy.
func (s Status) AllowedTargets() []Status {
	return slices.Clone(getTransitions()[s])
}

// CanTransitionTo reports whether (s, to) is an edge of the transition table.
func (s Status) CanTransitionTo(to Status) bool {
	return slices.Contains(getTransitions()[s], to)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	targets, ok := getTransitions()[s]
	return ok && len(targets) == 0
}

// IsInitial reports whether a shipment may be created in s.
func (s Status) IsInitial() bool {
	return s == Saved || s == Pending
}

// TransitionTo validates the edge and returns the target status.
// An invalid target yields a validation error; a valid target that is not
// reachable from s yields *InvalidTransitionError.
func (s Status) TransitionTo(to Status) (Status, error) {
	if err := to.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(to) {
		return Unknown, &InvalidTransitionError{From: s, To: to}
	}
	return to, nil
}

// InvalidTransitionError reports a requested status that is not reachable
// from the current one.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("%s: shipment is %s and can no longer change status", ErrInvalidTransition, e.From)
	}
	return fmt.Sprintf("%s: cannot move from %s to %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
