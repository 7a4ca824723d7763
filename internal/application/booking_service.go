package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hostelry/service-rooms/internal/domain"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
	"github.com/hostelry/service-rooms/internal/events"
	"github.com/hostelry/service-rooms/internal/kafka"
	"go.uber.org/zap"
)

const eventSource = "service-rooms"

// EventPublisher publishes integration events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingOptions tunes the toggle retry loop and event routing.
type BookingOptions struct {
	// MaxAttempts bounds the read-modify-write attempts per toggle, including the first.
	MaxAttempts int
	RetryDelay  time.Duration
	Topic       string
}

// DefaultBookingOptions returns three attempts, a 10ms pause and the default topic.
func DefaultBookingOptions() BookingOptions {
	return BookingOptions{MaxAttempts: 3, RetryDelay: 10 * time.Millisecond, Topic: events.TopicRoomEvents}
}

// ToggleResult is the outcome of a successful toggle.
type ToggleResult struct {
	Outcome roomDomain.Outcome
	Message string
	Room    RoomDTO
}

// BookingService runs the book/revert toggle against the room store.
type BookingService struct {
	repo      roomDomain.Repository
	publisher EventPublisher
	opts      BookingOptions
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo roomDomain.Repository,
	publisher EventPublisher,
	opts BookingOptions,
	logger *zap.Logger,
) *BookingService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Topic == "" {
		opts.Topic = events.TopicRoomEvents
	}
	return &BookingService{
		repo:      repo,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}

// ToggleBooking books a vacant room for the requester or reverts the
// requester's own booking. A room held by someone else yields a
// *room.ForbiddenError. Lost optimistic-locking races are retried up to
// MaxAttempts before the conflict is returned.
func (s *BookingService) ToggleBooking(ctx context.Context, roomID int64, requester domain.Identity) (*ToggleResult, error) {
	if requester.IsZero() {
		return nil, domain.NewUnauthenticatedError("booking a room requires a verified identity")
	}

	var result *ToggleResult
	operation := func() error {
		res, err := s.attemptToggle(ctx, roomID, requester)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryDelay), uint64(s.opts.MaxAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		s.logger.Debug("room toggle lost a race, retrying",
			zap.Int64("room_id", roomID),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn("room toggle gave up after repeated conflicts",
				zap.Int64("room_id", roomID),
				zap.Int("attempts", s.opts.MaxAttempts),
			)
		}
		return nil, err
	}

	s.publishTransition(ctx, result, requester)
	return result, nil
}

// attemptToggle performs one read-modify-write of the room.
func (s *BookingService) attemptToggle(ctx context.Context, roomID int64, requester domain.Identity) (*ToggleResult, error) {
	rm, err := s.repo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	outcome, err := rm.Toggle(requester)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.Info("room booking toggled",
		zap.Int64("room_id", rm.ID()),
		zap.String("outcome", outcome.String()),
		zap.String("user_id", requester.ID.String()),
		zap.Int64("version", rm.Version()),
	)

	return &ToggleResult{Outcome: outcome, Message: outcome.Message(), Room: toRoomDTO(rm)}, nil
}

func (s *BookingService) publishTransition(ctx context.Context, result *ToggleResult, requester domain.Identity) {
	now := time.Now().UTC()
	var (
		eventType string
		data      interface{}
	)
	switch result.Outcome {
	case roomDomain.OutcomeBooked:
		eventType = events.RoomBooked
		data = events.RoomBookedEvent{
			RoomID:     result.Room.ID,
			RoomNumber: result.Room.Number,
			HolderID:   requester.ID,
			OccurredAt: now,
		}
	case roomDomain.OutcomeReverted:
		eventType = events.RoomReleased
		data = events.RoomReleasedEvent{
			RoomID:     result.Room.ID,
			RoomNumber: result.Room.Number,
			ReleasedBy: requester.ID,
			OccurredAt: now,
		}
	default:
		return
	}

	s.publishEvent(ctx, eventType, strconv.FormatInt(result.Room.ID, 10), data)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = key

	if err := s.publisher.PublishEvent(ctx, s.opts.Topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", s.opts.Topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
