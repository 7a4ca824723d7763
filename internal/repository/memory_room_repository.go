package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hostelry/service-rooms/internal/domain"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
)

// MemoryRoomRepository keeps rooms in process memory. Every room has its own
// lock, so a compare-and-swap on one room never waits on another.
type MemoryRoomRepository struct {
	rooms  sync.Map // int64 -> *memoryRoomEntry
	nextID atomic.Int64
}

type memoryRoomEntry struct {
	mu    sync.Mutex
	model RoomModel
}

// NewMemoryRoomRepository creates an empty MemoryRoomRepository.
func NewMemoryRoomRepository() *MemoryRoomRepository {
	return &MemoryRoomRepository{}
}

// FindByID retrieves a room by its identifier.
func (r *MemoryRoomRepository) FindByID(_ context.Context, id int64) (*roomDomain.Room, error) {
	entry, ok := r.entry(id)
	if !ok {
		return nil, domain.NewNotFoundError("Room", strconv.FormatInt(id, 10))
	}
	return toDomainRoom(entry.snapshot())
}

// List retrieves rooms matching the filter ordered by ascending ID.
func (r *MemoryRoomRepository) List(ctx context.Context, filter roomDomain.Filter, page roomDomain.Page) ([]*roomDomain.Room, int64, error) {
	var (
		matched []*roomDomain.Room
		err     error
	)
	r.rooms.Range(func(_, value any) bool {
		if ctx.Err() != nil {
			err = ctx.Err()
			return false
		}
		var rm *roomDomain.Room
		rm, err = toDomainRoom(value.(*memoryRoomEntry).snapshot())
		if err != nil {
			return false
		}
		if filter.Matches(rm) {
			matched = append(matched, rm)
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID() < matched[j].ID() })
	total := int64(len(matched))

	if page.Limit > 0 {
		start := page.Offset()
		if start >= len(matched) {
			return []*roomDomain.Room{}, total, nil
		}
		end := start + page.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	if matched == nil {
		matched = []*roomDomain.Room{}
	}

	return matched, total, nil
}

// Save persists a new room and assigns its identifier.
func (r *MemoryRoomRepository) Save(_ context.Context, rm *roomDomain.Room) error {
	id := r.nextID.Add(1)
	rm.AssignID(id)
	r.rooms.Store(id, &memoryRoomEntry{model: *toRoomModel(rm)})
	return nil
}

// Update persists the booking state of a room with optimistic locking.
func (r *MemoryRoomRepository) Update(_ context.Context, rm *roomDomain.Room) error {
	entry, ok := r.entry(rm.ID())
	if !ok {
		return domain.NewNotFoundError("Room", strconv.FormatInt(rm.ID(), 10))
	}

	model := toRoomModel(rm)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.model.Version != rm.Version()-1 {
		return domain.NewConflictError("room was modified by another transaction")
	}
	entry.model.Booked = model.Booked
	entry.model.BookedBy = model.BookedBy
	entry.model.BookedByName = model.BookedByName
	entry.model.Version = model.Version
	entry.model.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *MemoryRoomRepository) entry(id int64) (*memoryRoomEntry, bool) {
	value, ok := r.rooms.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*memoryRoomEntry), true
}

// snapshot returns a copy of the stored row taken under the room's lock.
func (e *memoryRoomEntry) snapshot() *RoomModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.model
	if m.BookedBy != nil {
		id := *m.BookedBy
		m.BookedBy = &id
	}
	return &m
}
