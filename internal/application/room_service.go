package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hostelry/service-rooms/internal/domain"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
	"go.uber.org/zap"
)

// RoomDTO is the response representation of a room.
type RoomDTO struct {
	ID            int64      `json:"id"`
	Number        uint       `json:"number"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	Beds          uint       `json:"beds"`
	Booked        bool       `json:"booked"`
	AvailableFrom time.Time  `json:"available_from"`
	BookedBy      *HolderDTO `json:"booked_by,omitempty"`
}

// HolderDTO identifies the holder of a room. It is only exposed to the holder.
type HolderDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// PaginatedResult is one page of a listing.
type PaginatedResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// RoomService answers room listing and lookup queries.
type RoomService struct {
	repo   roomDomain.Repository
	logger *zap.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(repo roomDomain.Repository, logger *zap.Logger) *RoomService {
	return &RoomService{repo: repo, logger: logger}
}

// ListRooms returns the rooms matching filter, ordered by ascending ID.
func (s *RoomService) ListRooms(ctx context.Context, filter roomDomain.Filter, page roomDomain.Page) (*PaginatedResult[RoomDTO], error) {
	rooms, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, rm := range rooms {
		dtos[i] = toRoomDTO(rm)
	}

	return &PaginatedResult[RoomDTO]{Items: dtos, Total: total, Page: page.Number, Limit: page.Limit}, nil
}

// GetRoom retrieves a single room by ID.
func (s *RoomService) GetRoom(ctx context.Context, roomID int64) (*RoomDTO, error) {
	rm, err := s.repo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	result := toRoomDTO(rm)
	return &result, nil
}

// ListRoomsHeldBy returns every room currently booked by the given identity.
func (s *RoomService) ListRoomsHeldBy(ctx context.Context, identity domain.Identity) ([]RoomDTO, error) {
	if identity.IsZero() {
		return nil, domain.NewUnauthenticatedError("listing booked rooms requires a verified identity")
	}

	rooms, _, err := s.repo.List(ctx, roomDomain.HeldBy(identity), roomDomain.Page{})
	if err != nil {
		return nil, err
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, rm := range rooms {
		dtos[i] = toHeldRoomDTO(rm)
	}
	return dtos, nil
}

// --- Helpers ---

func toRoomDTO(rm *roomDomain.Room) RoomDTO {
	return RoomDTO{
		ID:            rm.ID(),
		Number:        rm.Number(),
		Name:          rm.Name(),
		Price:         rm.Price(),
		Beds:          rm.Beds(),
		Booked:        rm.Booked(),
		AvailableFrom: rm.AvailableFrom(),
	}
}

func toHeldRoomDTO(rm *roomDomain.Room) RoomDTO {
	dto := toRoomDTO(rm)
	if holder, ok := rm.State().Holder(); ok {
		dto.BookedBy = &HolderDTO{ID: holder.ID, Username: holder.Username}
	}
	return dto
}
