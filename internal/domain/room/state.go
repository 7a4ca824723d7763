package room

import "github.com/hostelry/service-rooms/internal/domain"

// State is the booking state of a room: either vacant or booked by exactly
// one holder. The zero value is vacant. A holder can only exist inside a
// booked state, so "booked iff holder is set" cannot be violated.
type State struct {
	holder *domain.Identity
}

// Vacant returns the unbooked state.
func Vacant() State { return State{} }

// BookedBy returns the state of a room held by the given identity.
func BookedBy(holder domain.Identity) State {
	h := holder
	return State{holder: &h}
}

// IsBooked reports whether the room currently has a holder.
func (s State) IsBooked() bool { return s.holder != nil }

// Holder returns the current holder and true, or the zero identity and false when vacant.
func (s State) Holder() (domain.Identity, bool) {
	if s.holder == nil {
		return domain.Identity{}, false
	}
	return *s.holder, true
}

// HeldBy reports whether the room is booked by the given identity.
func (s State) HeldBy(identity domain.Identity) bool {
	return s.holder != nil && s.holder.Equal(identity)
}

// String returns "vacant" or "booked".
func (s State) String() string {
	if s.IsBooked() {
		return "booked"
	}
	return "vacant"
}
