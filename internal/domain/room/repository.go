package room

import "context"

// Page selects a window of a listing. A zero Limit means no limit.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Limit <= 0 || p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Repository defines the persistence contract for room aggregates.
type Repository interface {
	// FindByID retrieves a room by its identifier.
	FindByID(ctx context.Context, id int64) (*Room, error)

	// List retrieves rooms matching the filter ordered by ascending ID,
	// together with the total number of matches.
	List(ctx context.Context, filter Filter, page Page) ([]*Room, int64, error)

	// Save persists a new room and assigns its identifier.
	Save(ctx context.Context, room *Room) error

	// Update persists a state transition with optimistic locking. It fails
	// with a domain conflict error when the stored version is no longer the
	// one the room was loaded with.
	Update(ctx context.Context, room *Room) error
}
