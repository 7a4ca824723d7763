package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hostelry/service-rooms/internal/domain"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
	"github.com/hostelry/service-rooms/internal/events"
	"github.com/hostelry/service-rooms/internal/kafka"
	"github.com/hostelry/service-rooms/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// conflictingRepo fails the first n updates with a conflict.
type conflictingRepo struct {
	roomDomain.Repository
	mu        sync.Mutex
	conflicts int
	updates   int
}

func (r *conflictingRepo) Update(ctx context.Context, rm *roomDomain.Room) error {
	r.mu.Lock()
	r.updates++
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return domain.NewConflictError("room was modified by another transaction")
	}
	r.mu.Unlock()
	return r.Repository.Update(ctx, rm)
}

func seedRoom(t *testing.T, repo roomDomain.Repository, price float64) *roomDomain.Room {
	t.Helper()
	rm, err := roomDomain.NewRoom(7, "Garden suite", price, 2, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), rm))
	return rm
}

func newBookingService(repo roomDomain.Repository, publisher EventPublisher) *BookingService {
	opts := DefaultBookingOptions()
	opts.RetryDelay = time.Millisecond
	return NewBookingService(repo, publisher, opts, zap.NewNop())
}

func TestToggleBooking_BookThenRevert(t *testing.T) {
	repo := repository.NewMemoryRoomRepository()
	rm := seedRoom(t, repo, 100)
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, publisher)
	ctx := context.Background()
	alice := domain.NewIdentity(uuid.New(), "alice")

	booked, err := svc.ToggleBooking(ctx, rm.ID(), alice)
	require.NoError(t, err)
	assert.Equal(t, roomDomain.OutcomeBooked, booked.Outcome)
	assert.Equal(t, "Room successfully booked", booked.Message)
	assert.True(t, booked.Room.Booked)

	stored, err := repo.FindByID(ctx, rm.ID())
	require.NoError(t, err)
	assert.True(t, stored.State().HeldBy(alice))

	reverted, err := svc.ToggleBooking(ctx, rm.ID(), alice)
	require.NoError(t, err)
	assert.Equal(t, roomDomain.OutcomeReverted, reverted.Outcome)
	assert.Equal(t, "Booking successfully reverted!", reverted.Message)

	stored, err = repo.FindByID(ctx, rm.ID())
	require.NoError(t, err)
	assert.False(t, stored.Booked())
	_, hasHolder := stored.State().Holder()
	assert.False(t, hasHolder)

	assert.Equal(t, []string{events.RoomBooked, events.RoomReleased}, publisher.types())
}

func TestToggleBooking_OtherUserIsForbidden(t *testing.T) {
	repo := repository.NewMemoryRoomRepository()
	rm := seedRoom(t, repo, 100)
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, publisher)
	ctx := context.Background()
	alice := domain.NewIdentity(uuid.New(), "alice")
	bob := domain.NewIdentity(uuid.New(), "bob")

	_, err := svc.ToggleBooking(ctx, rm.ID(), alice)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result, err := svc.ToggleBooking(ctx, rm.ID(), bob)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		var forbidden *roomDomain.ForbiddenError
		require.True(t, errors.As(err, &forbidden))
		assert.Equal(t, alice.ID, forbidden.Holder.ID)
	}

	stored, err := repo.FindByID(ctx, rm.ID())
	require.NoError(t, err)
	assert.True(t, stored.State().HeldBy(alice))
	assert.Equal(t, int64(2), stored.Version())
	assert.Equal(t, []string{events.RoomBooked}, publisher.types())
}

func TestToggleBooking_UnknownRoom(t *testing.T) {
	svc := newBookingService(repository.NewMemoryRoomRepository(), &recordingPublisher{})

	_, err := svc.ToggleBooking(context.Background(), 404, domain.NewIdentity(uuid.New(), "alice"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleBooking_RequiresIdentity(t *testing.T) {
	repo := repository.NewMemoryRoomRepository()
	rm := seedRoom(t, repo, 100)
	svc := newBookingService(repo, &recordingPublisher{})

	_, err := svc.ToggleBooking(context.Background(), rm.ID(), domain.Identity{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestToggleBooking_RetriesTransientConflict(t *testing.T) {
	memory := repository.NewMemoryRoomRepository()
	rm := seedRoom(t, memory, 100)
	repo := &conflictingRepo{Repository: memory, conflicts: 2}
	svc := newBookingService(repo, &recordingPublisher{})

	result, err := svc.ToggleBooking(context.Background(), rm.ID(), domain.NewIdentity(uuid.New(), "alice"))
	require.NoError(t, err)
	assert.Equal(t, roomDomain.OutcomeBooked, result.Outcome)
	assert.Equal(t, 3, repo.updates)
}

func TestToggleBooking_SurfacesConflictAfterMaxAttempts(t *testing.T) {
	memory := repository.NewMemoryRoomRepository()
	rm := seedRoom(t, memory, 100)
	repo := &conflictingRepo{Repository: memory, conflicts: 10}
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, publisher)

	_, err := svc.ToggleBooking(context.Background(), rm.ID(), domain.NewIdentity(uuid.New(), "alice"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, repo.updates)
	assert.Empty(t, publisher.types())

	stored, err := memory.FindByID(context.Background(), rm.ID())
	require.NoError(t, err)
	assert.False(t, stored.Booked())
}

func TestToggleBooking_PublishFailureDoesNotFailToggle(t *testing.T) {
	repo := repository.NewMemoryRoomRepository()
	rm := seedRoom(t, repo, 100)
	svc := newBookingService(repo, &recordingPublisher{err: errors.New("broker down")})

	result, err := svc.ToggleBooking(context.Background(), rm.ID(), domain.NewIdentity(uuid.New(), "alice"))
	require.NoError(t, err)
	assert.Equal(t, roomDomain.OutcomeBooked, result.Outcome)
}

func TestToggleBooking_ConcurrentRequestersSingleWinner(t *testing.T) {
	repo := repository.NewMemoryRoomRepository()
	rm := seedRoom(t, repo, 100)
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, publisher)

	const requesters = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		booked    int
		forbidden int
		winner    domain.Identity
		other     []error
	)
	start := make(chan struct{})

	for i := 0; i < requesters; i++ {
		identity := domain.NewIdentity(uuid.New(), "guest")
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			result, err := svc.ToggleBooking(context.Background(), rm.ID(), identity)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && result.Outcome == roomDomain.OutcomeBooked:
				booked++
				winner = identity
			case errors.Is(err, domain.ErrForbidden):
				forbidden++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, booked)
	assert.Equal(t, requesters-1, forbidden)

	stored, err := repo.FindByID(context.Background(), rm.ID())
	require.NoError(t, err)
	assert.True(t, stored.State().HeldBy(winner))
	assert.Equal(t, []string{events.RoomBooked}, publisher.types())
}

func TestToggleBooking_DistinctRoomsAreIndependent(t *testing.T) {
	repo := repository.NewMemoryRoomRepository()
	svc := newBookingService(repo, &recordingPublisher{})

	const rooms = 20
	ids := make([]int64, rooms)
	for i := range ids {
		ids[i] = seedRoom(t, repo, float64(i)).ID()
	}

	var wg sync.WaitGroup
	errs := make([]error, rooms)
	for i, id := range ids {
		i, id := i, id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.ToggleBooking(context.Background(), id, domain.NewIdentity(uuid.New(), "guest"))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	booked, total, err := repo.List(context.Background(), roomDomain.NewFilter(roomDomain.Condition{
		Field: roomDomain.FieldBooked, Comparator: roomDomain.Eq, Value: true,
	}), roomDomain.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(rooms), total)
	assert.Len(t, booked, rooms)
}
