package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbooking/internal/config"
	"hotelbooking/internal/domain"
	"hotelbooking/internal/lock"
	"hotelbooking/internal/metrics"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var liveStatusesOnly = []domain.BookingStatus{domain.BookingCancelled}

type Service struct {
	bookings    BookingStore
	rooms       RoomDirectory
	locker      lock.RoomLocker
	recorder    metrics.Recorder
	logger      zerolog.Logger
	pageSize    int
	maxPageSize int
	now         func() time.Time
}

func NewService(
	bookings BookingStore,
	rooms RoomDirectory,
	locker lock.RoomLocker,
	cfg config.BookingConfig,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}

	return &Service{
		bookings:    bookings,
		rooms:       rooms,
		locker:      locker,
		recorder:    recorder,
		logger:      logger.With().Str("component", "booking-service").Logger(),
		pageSize:    cfg.DefaultPageSize,
		maxPageSize: cfg.MaxPageSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// IsAvailable reports whether [checkIn, checkOut) is free on the room. Cancelled bookings
// never block; excludeID skips the booking being edited.
func (s *Service) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID *int64) (bool, error) {
	existing, err := s.bookings.FindOne(ctx, domain.BookingFilter{
		RoomID:          &roomID,
		Overlapping:     &domain.DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()},
		ExcludeStatuses: liveStatusesOnly,
		ExcludeID:       excludeID,
	})
	if err != nil {
		return false, fmt.Errorf("check availability for room %d: %w", roomID, err)
	}
	return existing == nil, nil
}

// CheckAvailability answers an availability query for a room and quotes the stay at its current rate.
func (s *Service) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (*Availability, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut = checkIn.UTC(), checkOut.UTC()
	nights := Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, invalid("check-out date must be after check-in date")
	}

	free, err := s.IsAvailable(ctx, room.ID, checkIn, checkOut, nil)
	if err != nil {
		return nil, err
	}

	return &Availability{
		RoomID:        room.ID,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Available:     free && room.IsActive,
		Nights:        nights,
		PricePerNight: room.PricePerNight,
		TotalPrice:    TotalPrice(nights, room.PricePerNight),
	}, nil
}

func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	room, err := s.findRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, invalid("room is not available for booking")
	}
	if in.NumberOfGuests > room.MaxGuests {
		return nil, invalid("room %s allows a maximum of %d guests", room.RoomNumber, room.MaxGuests)
	}

	checkIn, checkOut := in.CheckInDate.UTC(), in.CheckOutDate.UTC()

	unlock, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The room may have been deleted or deactivated while we waited for the lock.
	if room, err = s.findRoom(ctx, room.ID); err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, invalid("room is not available for booking")
	}

	free, err := s.IsAvailable(ctx, room.ID, checkIn, checkOut, nil)
	if err != nil {
		return nil, err
	}
	if !free {
		s.recorder.BookingOutcome(metrics.OutcomeConflict)
		return nil, conflict("room is already booked for the selected dates")
	}

	nights := Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, invalid("check-out date must be after check-in date")
	}

	now := s.now()
	b := &domain.Booking{
		RoomID:          room.ID,
		GuestName:       strings.TrimSpace(in.GuestName),
		GuestEmail:      normalizeEmail(in.GuestEmail),
		GuestPhone:      strings.TrimSpace(in.GuestPhone),
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumberOfGuests:  in.NumberOfGuests,
		NumberOfNights:  nights,
		PricePerNight:   room.PricePerNight,
		TotalPrice:      TotalPrice(nights, room.PricePerNight),
		Status:          domain.BookingPending,
		SpecialRequests: in.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookings.Insert(ctx, b); err != nil {
		if isOverlapViolation(err) {
			s.recorder.BookingOutcome(metrics.OutcomeConflict)
			return nil, conflict("room is already booked for the selected dates")
		}
		s.logger.Error().Err(err).Int64("room_id", room.ID).Msg("insert booking")
		return nil, err
	}
	b.Room = room

	s.recorder.BookingOutcome(metrics.OutcomeCreated)
	s.logger.Info().
		Int64("booking_id", b.ID).
		Int64("room_id", room.ID).
		Int("nights", nights).
		Int64("total_price", b.TotalPrice).
		Msg("booking created")

	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRoom(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings returns one page of matching bookings, newest first. The count and the page
// are read concurrently, so the total may be slightly stale under concurrent writes.
func (s *Service) ListBookings(ctx context.Context, f ListFilter) (*ListResult, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = s.pageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	filter := normalizeFilter(f).storeFilter()

	var (
		total int64
		rows  []domain.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.bookings.Count(gctx, filter)
		total = n
		return err
	})
	g.Go(func() error {
		found, err := s.bookings.Find(gctx, filter, domain.Page{Offset: (page - 1) * limit, Limit: limit})
		rows = found
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	if err := s.attachRooms(ctx, rows); err != nil {
		return nil, err
	}

	return &ListResult{
		Bookings: rows,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// ExportBookings returns every booking matching f, ignoring pagination.
func (s *Service) ExportBookings(ctx context.Context, f ListFilter) ([]domain.Booking, error) {
	rows, err := s.bookings.Find(ctx, normalizeFilter(f).storeFilter(), domain.Page{})
	if err != nil {
		return nil, fmt.Errorf("export bookings: %w", err)
	}
	if err := s.attachRooms(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateBooking applies the supplied fields. Changing either date re-checks availability
// and reprices the stay at the rate stored on the booking.
func (s *Service) UpdateBooking(ctx context.Context, id int64, in UpdateBookingInput) (*domain.Booking, error) {
	b, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, invalid("cannot update a cancelled booking")
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, invalid("invalid booking status %q", *in.Status)
		}
		if *in.Status == domain.BookingCancelled {
			return nil, invalid("use cancel to cancel a booking")
		}
	}

	if in.changesDates() {
		unlock, err := s.lockRoom(ctx, b.RoomID)
		if err != nil {
			return nil, err
		}
		defer unlock()

		// Re-read under the lock; another request may have cancelled or moved it.
		if b, err = s.findBooking(ctx, id); err != nil {
			return nil, err
		}
		if b.Status == domain.BookingCancelled {
			return nil, invalid("cannot update a cancelled booking")
		}

		checkIn, checkOut := b.CheckInDate, b.CheckOutDate
		if in.CheckInDate != nil {
			checkIn = in.CheckInDate.UTC()
		}
		if in.CheckOutDate != nil {
			checkOut = in.CheckOutDate.UTC()
		}

		free, err := s.IsAvailable(ctx, b.RoomID, checkIn, checkOut, &b.ID)
		if err != nil {
			return nil, err
		}
		if !free {
			s.recorder.BookingOutcome(metrics.OutcomeConflict)
			return nil, conflict("room is not available for the updated dates")
		}

		nights := Nights(checkIn, checkOut)
		if nights < 1 {
			return nil, invalid("check-out date must be after check-in date")
		}
		b.CheckInDate = checkIn
		b.CheckOutDate = checkOut
		b.NumberOfNights = nights
		b.TotalPrice = TotalPrice(nights, b.PricePerNight)
	}

	if in.GuestName != nil {
		b.GuestName = strings.TrimSpace(*in.GuestName)
	}
	if in.GuestEmail != nil {
		b.GuestEmail = normalizeEmail(*in.GuestEmail)
	}
	if in.GuestPhone != nil {
		b.GuestPhone = strings.TrimSpace(*in.GuestPhone)
	}
	if in.NumberOfGuests != nil {
		b.NumberOfGuests = *in.NumberOfGuests
	}
	if in.SpecialRequests != nil {
		b.SpecialRequests = *in.SpecialRequests
	}
	previous := b.Status
	if in.Status != nil {
		b.Status = *in.Status
	}
	b.UpdatedAt = s.now()

	if err := s.persist(ctx, b, previous); err != nil {
		return nil, err
	}
	if err := s.attachRoom(ctx, b); err != nil {
		return nil, err
	}

	s.recorder.BookingOutcome(metrics.OutcomeUpdated)
	if previous != b.Status && b.Status == domain.BookingCompleted {
		s.recorder.BookingOutcome(metrics.OutcomeCompleted)
	}
	s.logger.Info().
		Int64("booking_id", b.ID).
		Str("from_status", previous.String()).
		Str("status", b.Status.String()).
		Msg("booking updated")

	return b, nil
}

func (s *Service) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	status := domain.BookingConfirmed
	return s.UpdateBooking(ctx, id, UpdateBookingInput{Status: &status})
}

func (s *Service) CompleteBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	status := domain.BookingCompleted
	return s.UpdateBooking(ctx, id, UpdateBookingInput{Status: &status})
}

// CancelBooking is one-way; there is no way back from cancelled.
func (s *Service) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case domain.BookingCancelled:
		return nil, invalid("booking is already cancelled")
	case domain.BookingCompleted:
		return nil, invalid("cannot cancel a completed booking")
	}

	previous := b.Status
	b.Status = domain.BookingCancelled
	b.UpdatedAt = s.now()

	if err := s.persist(ctx, b, previous); err != nil {
		return nil, err
	}
	if err := s.attachRoom(ctx, b); err != nil {
		return nil, err
	}

	s.recorder.BookingOutcome(metrics.OutcomeCancelled)
	s.logger.Info().
		Int64("booking_id", b.ID).
		Str("from_status", previous.String()).
		Msg("booking cancelled")

	return b, nil
}

// CompleteFinishedStays moves every confirmed booking whose check-out is at or before asOf
// to completed and returns how many were moved.
func (s *Service) CompleteFinishedStays(ctx context.Context, asOf time.Time) (int, error) {
	status := domain.BookingConfirmed
	asOf = asOf.UTC()

	rows, err := s.bookings.Find(ctx, domain.BookingFilter{Status: &status, CheckOutTo: &asOf}, domain.Page{})
	if err != nil {
		return 0, fmt.Errorf("find finished stays: %w", err)
	}

	done := 0
	for i := range rows {
		b := &rows[i]
		b.Status = domain.BookingCompleted
		b.UpdatedAt = s.now()
		err := s.bookings.Update(ctx, b, domain.BookingConfirmed)
		if errors.Is(err, domain.ErrStatusChanged) || errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug().Int64("booking_id", b.ID).Msg("booking changed before completion, skipped")
			continue
		}
		if err != nil {
			return done, fmt.Errorf("complete booking %d: %w", b.ID, err)
		}
		done++
		s.recorder.BookingOutcome(metrics.OutcomeCompleted)
	}

	if done > 0 {
		s.logger.Info().Int("count", done).Time("as_of", asOf).Msg("finished stays completed")
	}
	return done, nil
}

// persist writes b only if its stored status is still expected, the status the caller
// based its decision on.
func (s *Service) persist(ctx context.Context, b *domain.Booking, expected domain.BookingStatus) error {
	err := s.bookings.Update(ctx, b, expected)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return notFound("booking %d not found", b.ID)
	case errors.Is(err, domain.ErrStatusChanged):
		return s.statusChanged(ctx, b.ID)
	case isOverlapViolation(err):
		s.recorder.BookingOutcome(metrics.OutcomeConflict)
		return conflict("room is not available for the updated dates")
	default:
		s.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("update booking")
		return err
	}
}

func (s *Service) statusChanged(ctx context.Context, id int64) error {
	current, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Warn().
		Int64("booking_id", id).
		Str("status", current.Status.String()).
		Msg("booking status changed during update")
	if current.Status == domain.BookingCancelled {
		return invalid("booking %d was cancelled by another request", id)
	}
	return conflict("booking %d was changed by another request, try again", id)
}

func (s *Service) lockRoom(ctx context.Context, roomID int64) (func(), error) {
	unlock, err := s.locker.Lock(ctx, roomID)
	if errors.Is(err, lock.ErrTimeout) {
		return nil, conflict("room %d is being booked by another request, try again", roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock room %d: %w", roomID, err)
	}
	return unlock, nil
}

func (s *Service) findRoom(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, notFound("room %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find room %d: %w", id, err)
	}
	return room, nil
}

func (s *Service) findBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, notFound("booking %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find booking %d: %w", id, err)
	}
	return b, nil
}

// attachRoom leaves Room nil when the room has since been removed from the directory.
func (s *Service) attachRoom(ctx context.Context, b *domain.Booking) error {
	room, err := s.rooms.FindByID(ctx, b.RoomID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find room %d: %w", b.RoomID, err)
	}
	b.Room = room
	return nil
}

func (s *Service) attachRooms(ctx context.Context, rows []domain.Booking) error {
	cache := make(map[int64]*domain.Room)
	for i := range rows {
		roomID := rows[i].RoomID
		room, seen := cache[roomID]
		if !seen {
			found, err := s.rooms.FindByID(ctx, roomID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("find room %d: %w", roomID, err)
			}
			room = found
			cache[roomID] = room
		}
		rows[i].Room = room
	}
	return nil
}

func normalizeFilter(f ListFilter) ListFilter {
	if f.GuestEmail != nil {
		email := normalizeEmail(*f.GuestEmail)
		f.GuestEmail = &email
	}
	return f
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isOverlapViolation detects the bookings_no_overlap exclusion constraint on Postgres.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01"
	}
	return false
}
