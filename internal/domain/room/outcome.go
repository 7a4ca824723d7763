package room

import (
	"fmt"

	"github.com/hostelry/service-rooms/internal/domain"
)

// Outcome is the result of a toggle transition.
type Outcome int

const (
	OutcomeBooked Outcome = iota + 1
	OutcomeReverted
	OutcomeForbidden
)

// Human-readable status messages returned to clients.
const (
	MessageBooked    = "Room successfully booked"
	MessageReverted  = "Booking successfully reverted!"
	MessageForbidden = "You can't revert booking of this room"
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeBooked:
		return "booked"
	case OutcomeReverted:
		return "reverted"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Message returns the client-facing status message for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeBooked:
		return MessageBooked
	case OutcomeReverted:
		return MessageReverted
	case OutcomeForbidden:
		return MessageForbidden
	default:
		return ""
	}
}

// Changed reports whether the outcome mutated the room.
func (o Outcome) Changed() bool {
	return o == OutcomeBooked || o == OutcomeReverted
}

// ForbiddenError is returned when a caller tries to release a room held by someone else.
type ForbiddenError struct {
	RoomID int64
	Holder domain.Identity
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("room %d is booked by another user", e.RoomID)
}

func (e *ForbiddenError) Unwrap() error { return domain.ErrForbidden }
