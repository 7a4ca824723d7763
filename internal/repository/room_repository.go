package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hostelry/service-rooms/internal/domain"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
	"gorm.io/gorm"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	Number        uint       `gorm:"not null"`
	Name          string     `gorm:"not null;size:128"`
	Price         float64    `gorm:"not null;index"`
	Beds          uint       `gorm:"not null"`
	Booked        bool       `gorm:"not null;default:false;index"`
	BookedBy      *uuid.UUID `gorm:"type:uuid;index"`
	BookedByName  string     `gorm:"size:150"`
	AvailableFrom time.Time  `gorm:"not null;index"`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository is the GORM-based implementation of room.Repository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by its identifier.
func (r *GormRoomRepository) FindByID(ctx context.Context, id int64) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find room by ID: %w", err)
	}
	return toDomainRoom(&model)
}

// List retrieves rooms matching the filter ordered by ascending ID.
func (r *GormRoomRepository) List(ctx context.Context, filter roomDomain.Filter, page roomDomain.Page) ([]*roomDomain.Room, int64, error) {
	countSQL, countArgs, err := countRoomsQuery(filter)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Raw(countSQL, countArgs...).Scan(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	listSQL, listArgs, err := selectRoomsQuery(filter, page)
	if err != nil {
		return nil, 0, err
	}
	var models []RoomModel
	if err := r.db.WithContext(ctx).Raw(listSQL, listArgs...).Scan(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]*roomDomain.Room, len(models))
	for i := range models {
		rm, err := toDomainRoom(&models[i])
		if err != nil {
			return nil, 0, err
		}
		rooms[i] = rm
	}

	return rooms, total, nil
}

// Save persists a new room and assigns its identifier.
func (r *GormRoomRepository) Save(ctx context.Context, rm *roomDomain.Room) error {
	model := toRoomModel(rm)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	rm.AssignID(model.ID)
	return nil
}

// Update persists the booking state of a room with optimistic locking.
func (r *GormRoomRepository) Update(ctx context.Context, rm *roomDomain.Room) error {
	model := toRoomModel(rm)

	// Only update if the stored version is the one the room was loaded with.
	expectedVersion := rm.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&RoomModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"booked":         model.Booked,
			"booked_by":      model.BookedBy,
			"booked_by_name": model.BookedByName,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update room: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("room was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toRoomModel(rm *roomDomain.Room) *RoomModel {
	model := &RoomModel{
		ID:            rm.ID(),
		Number:        rm.Number(),
		Name:          rm.Name(),
		Price:         rm.Price(),
		Beds:          rm.Beds(),
		AvailableFrom: rm.AvailableFrom(),
		Version:       rm.Version(),
		CreatedAt:     rm.CreatedAt(),
		UpdatedAt:     rm.UpdatedAt(),
	}
	if holder, ok := rm.State().Holder(); ok {
		id := holder.ID
		model.Booked = true
		model.BookedBy = &id
		model.BookedByName = holder.Username
	}
	return model
}

func toDomainRoom(m *RoomModel) (*roomDomain.Room, error) {
	state, err := stateFromColumns(m.ID, m.Booked, m.BookedBy, m.BookedByName)
	if err != nil {
		return nil, err
	}

	return roomDomain.ReconstructRoom(
		m.ID,
		m.Number,
		m.Name,
		m.Price,
		m.Beds,
		m.AvailableFrom.UTC(),
		state,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

// stateFromColumns folds the booked/booked_by column pair into a State,
// rejecting rows where the two disagree.
func stateFromColumns(id int64, booked bool, bookedBy *uuid.UUID, bookedByName string) (roomDomain.State, error) {
	switch {
	case booked && bookedBy != nil && *bookedBy != uuid.Nil:
		return roomDomain.BookedBy(domain.NewIdentity(*bookedBy, bookedByName)), nil
	case !booked && bookedBy == nil:
		return roomDomain.Vacant(), nil
	default:
		return roomDomain.State{}, fmt.Errorf("room %d has inconsistent booking columns (booked=%t, booked_by set=%t)", id, booked, bookedBy != nil)
	}
}
