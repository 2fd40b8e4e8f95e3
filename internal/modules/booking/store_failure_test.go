package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotelbooking/internal/config"
	"hotelbooking/internal/domain"
	"hotelbooking/internal/lock"
	"hotelbooking/internal/metrics"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) FindOne(ctx context.Context, f domain.BookingFilter) (*domain.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) Find(ctx context.Context, f domain.BookingFilter, p domain.Page) ([]domain.Booking, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingStore) Count(ctx context.Context, f domain.BookingFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingStore) Insert(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingStore) Update(ctx context.Context, b *domain.Booking, expected domain.BookingStatus) error {
	args := m.Called(ctx, b, expected)
	return args.Error(0)
}

type MockRoomDirectory struct {
	mock.Mock
}

func (m *MockRoomDirectory) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

type countingRecorder struct {
	outcomes map[string]int
}

func (r *countingRecorder) BookingOutcome(outcome string) {
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[outcome]++
}

func newMockedService(bookings *MockBookingStore, rooms *MockRoomDirectory, rec metrics.Recorder) *Service {
	return NewService(bookings, rooms, lock.NewLocal(), config.BookingConfig{}, rec, zerolog.Nop())
}

func testRoom() *domain.Room {
	return &domain.Room{ID: 7, RoomNumber: "707", RoomType: "suite", PricePerNight: 2500, MaxGuests: 3, IsActive: true}
}

func TestCreateBooking_InsertFailureSurfaces(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := newMockedService(bookings, rooms, nil)
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	rooms.On("FindByID", ctx, int64(7)).Return(testRoom(), nil)
	bookings.On("FindOne", ctx, mock.AnythingOfType("domain.BookingFilter")).Return(nil, nil)
	bookings.On("Insert", ctx, mock.AnythingOfType("*domain.Booking")).Return(dbErr)

	_, err := svc.CreateBooking(ctx, stay(7, jan(1), jan(3)))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrConflict)

	bookings.AssertExpectations(t)
	rooms.AssertExpectations(t)
}

func TestCreateBooking_ExclusionViolationIsConflict(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	rec := &countingRecorder{}
	svc := newMockedService(bookings, rooms, rec)
	ctx := context.Background()

	rooms.On("FindByID", ctx, int64(7)).Return(testRoom(), nil)
	bookings.On("FindOne", ctx, mock.AnythingOfType("domain.BookingFilter")).Return(nil, nil)
	bookings.On("Insert", ctx, mock.AnythingOfType("*domain.Booking")).
		Return(&pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"})

	_, err := svc.CreateBooking(ctx, stay(7, jan(1), jan(3)))
	assertKind(t, err, ErrConflict, "already booked")
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeConflict])
	assert.Zero(t, rec.outcomes[metrics.OutcomeCreated])
}

func TestCreateBooking_AvailabilityQuery(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := newMockedService(bookings, rooms, nil)
	ctx := context.Background()

	rooms.On("FindByID", ctx, int64(7)).Return(testRoom(), nil)
	bookings.On("FindOne", ctx, mock.MatchedBy(func(f domain.BookingFilter) bool {
		return f.RoomID != nil && *f.RoomID == 7 &&
			f.Overlapping != nil &&
			f.Overlapping.CheckIn.Equal(jan(1)) && f.Overlapping.CheckOut.Equal(jan(3)) &&
			len(f.ExcludeStatuses) == 1 && f.ExcludeStatuses[0] == domain.BookingCancelled &&
			f.ExcludeID == nil
	})).Return(nil, nil)
	bookings.On("Insert", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingPending && b.PricePerNight == 2500 && b.TotalPrice == 5000
	})).Return(nil)

	b, err := svc.CreateBooking(ctx, stay(7, jan(1), jan(3)))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), b.TotalPrice)
	bookings.AssertExpectations(t)
}

func TestCreateBooking_AvailabilityLookupFails(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := newMockedService(bookings, rooms, nil)
	ctx := context.Background()
	dbErr := errors.New("timeout")

	rooms.On("FindByID", ctx, int64(7)).Return(testRoom(), nil)
	bookings.On("FindOne", ctx, mock.Anything).Return(nil, dbErr)

	_, err := svc.CreateBooking(ctx, stay(7, jan(1), jan(3)))
	assert.ErrorIs(t, err, dbErr)
	bookings.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateBooking_RoomLookupFails(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := newMockedService(bookings, rooms, nil)
	ctx := context.Background()
	dbErr := errors.New("no connection")

	rooms.On("FindByID", ctx, int64(7)).Return(nil, dbErr)

	_, err := svc.CreateBooking(ctx, stay(7, jan(1), jan(3)))
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUpdateBooking_VanishedRowIsNotFound(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := newMockedService(bookings, rooms, nil)
	ctx := context.Background()

	existing := &domain.Booking{ID: 3, RoomID: 7, Status: domain.BookingPending, CheckInDate: jan(1), CheckOutDate: jan(2)}
	bookings.On("FindByID", ctx, int64(3)).Return(existing, nil)
	bookings.On("Update", ctx, mock.AnythingOfType("*domain.Booking"), domain.BookingPending).Return(domain.ErrNotFound)

	guests := 2
	_, err := svc.UpdateBooking(ctx, 3, UpdateBookingInput{NumberOfGuests: &guests})
	assertKind(t, err, ErrNotFound, "booking 3")
}

func TestListBookings_CountFailure(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := newMockedService(bookings, rooms, nil)
	dbErr := errors.New("count failed")

	bookings.On("Count", mock.Anything, mock.Anything).Return(int64(0), dbErr)
	bookings.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Booking{}, nil).Maybe()

	_, err := svc.ListBookings(context.Background(), ListFilter{})
	assert.ErrorIs(t, err, dbErr)
}

func TestListBookings_PageWindow(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := NewService(bookings, rooms, nil, config.BookingConfig{DefaultPageSize: 20, MaxPageSize: 50}, nil, zerolog.Nop())
	ctx := context.Background()

	bookings.On("Count", mock.Anything, mock.Anything).Return(int64(45), nil)
	bookings.On("Find", mock.Anything, mock.Anything, domain.Page{Offset: 40, Limit: 20}).
		Return([]domain.Booking{{ID: 1, RoomID: 7}}, nil)
	rooms.On("FindByID", ctx, int64(7)).Return(testRoom(), nil).Once()

	res, err := svc.ListBookings(ctx, ListFilter{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 3, Limit: 20, Total: 45, TotalPages: 3}, res.Pagination)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, "707", res.Bookings[0].Room.RoomNumber)
	bookings.AssertExpectations(t)
	rooms.AssertExpectations(t)
}

type stuckLocker struct{}

func (stuckLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	return nil, lock.ErrTimeout
}

func TestCreateBooking_LockTimeoutIsConflict(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := NewService(bookings, rooms, stuckLocker{}, config.BookingConfig{}, nil, zerolog.Nop())
	ctx := context.Background()

	rooms.On("FindByID", ctx, int64(7)).Return(testRoom(), nil)

	_, err := svc.CreateBooking(ctx, stay(7, jan(1), jan(3)))
	assertKind(t, err, ErrConflict, "try again")
	bookings.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestCompleteFinishedStays_StopsOnError(t *testing.T) {
	bookings := new(MockBookingStore)
	rooms := new(MockRoomDirectory)
	svc := newMockedService(bookings, rooms, nil)
	ctx := context.Background()
	asOf := time.Date(2026, time.January, 10, 3, 0, 0, 0, time.UTC)
	dbErr := errors.New("deadlock")

	rows := []domain.Booking{
		{ID: 1, RoomID: 7, Status: domain.BookingConfirmed},
		{ID: 2, RoomID: 7, Status: domain.BookingConfirmed},
	}
	bookings.On("Find", ctx, mock.MatchedBy(func(f domain.BookingFilter) bool {
		return f.Status != nil && *f.Status == domain.BookingConfirmed && f.CheckOutTo != nil && f.CheckOutTo.Equal(asOf)
	}), domain.Page{}).Return(rows, nil)
	bookings.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool { return b.ID == 1 }), domain.BookingConfirmed).Return(nil)
	bookings.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool { return b.ID == 2 }), domain.BookingConfirmed).Return(dbErr)

	n, err := svc.CompleteFinishedStays(ctx, asOf)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, 1, n)
}
