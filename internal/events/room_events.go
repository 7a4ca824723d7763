package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicRoomEvents is the default topic for room lifecycle events.
const TopicRoomEvents = "room.events"

// Event types published on TopicRoomEvents.
const (
	RoomBooked   = "room.booked"
	RoomReleased = "room.released"
)

// RoomBookedEvent is published when a vacant room is claimed.
type RoomBookedEvent struct {
	RoomID     int64     `json:"room_id"`
	RoomNumber uint      `json:"room_number"`
	HolderID   uuid.UUID `json:"holder_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoomReleasedEvent is published when the holder reverts a booking.
type RoomReleasedEvent struct {
	RoomID     int64     `json:"room_id"`
	RoomNumber uint      `json:"room_number"`
	ReleasedBy uuid.UUID `json:"released_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
