package room

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hostelry/service-rooms/internal/domain"
)

const maxNameLength = 128

// Room is the aggregate root for the room domain.
type Room struct {
	id            int64
	number        uint
	name          string
	price         float64
	beds          uint
	availableFrom time.Time
	state         State

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewRoom creates a new vacant Room. The identifier is assigned by the store on save.
func NewRoom(number uint, name string, price float64, beds uint, availableFrom time.Time) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("room name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, domain.NewValidationError(fmt.Sprintf("room name must be at most %d characters", maxNameLength))
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, domain.NewValidationError("room price must be a non-negative number")
	}
	if availableFrom.IsZero() {
		return nil, domain.NewValidationError("available_from is required")
	}

	now := time.Now().UTC()
	return &Room{
		number:        number,
		name:          name,
		price:         price,
		beds:          beds,
		availableFrom: availableFrom.UTC(),
		state:         Vacant(),
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructRoom rebuilds a Room from persistence data (no validation).
func ReconstructRoom(
	id int64,
	number uint,
	name string,
	price float64,
	beds uint,
	availableFrom time.Time,
	state State,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Room {
	return &Room{
		id:            id,
		number:        number,
		name:          name,
		price:         price,
		beds:          beds,
		availableFrom: availableFrom,
		state:         state,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the store-assigned identifier, or 0 before the room is saved.
func (r *Room) ID() int64 { return r.id }

// Number returns the room number.
func (r *Room) Number() uint { return r.number }

// Name returns the room name.
func (r *Room) Name() string { return r.name }

// Price returns the room price.
func (r *Room) Price() float64 { return r.price }

// Beds returns the number of beds.
func (r *Room) Beds() uint { return r.beds }

// AvailableFrom returns the time from which the room may be booked.
func (r *Room) AvailableFrom() time.Time { return r.availableFrom }

// State returns the booking state.
func (r *Room) State() State { return r.state }

// Booked reports whether the room currently has a holder.
func (r *Room) Booked() bool { return r.state.IsBooked() }

// Version returns the entity version for optimistic locking.
func (r *Room) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// AssignID records the identifier handed out by the store on insert.
func (r *Room) AssignID(id int64) { r.id = id }

// --- Behavior ---

// Toggle claims a vacant room for the requester, or releases it when the
// requester already holds it. A room held by someone else is left untouched
// and a *ForbiddenError is returned together with OutcomeForbidden.
func (r *Room) Toggle(requester domain.Identity) (Outcome, error) {
	if requester.IsZero() {
		return 0, domain.NewUnauthenticatedError("toggling a booking requires a verified identity")
	}

	holder, booked := r.state.Holder()
	switch {
	case !booked:
		r.state = BookedBy(requester)
		r.touch()
		return OutcomeBooked, nil
	case holder.Equal(requester):
		r.state = Vacant()
		r.touch()
		return OutcomeReverted, nil
	default:
		return OutcomeForbidden, &ForbiddenError{RoomID: r.id, Holder: holder}
	}
}

// touch bumps the version for optimistic locking.
func (r *Room) touch() {
	r.version++
	r.updatedAt = time.Now().UTC()
}
