package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/lock"
	"hotelbooking/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNumberTaken = errors.New("room number already exists")
	ErrRoomInUse       = errors.New("room has active bookings")
	ErrRoomBusy        = errors.New("room is locked by another request")
)

// RoomStore is implemented by repository.RoomRepository and its in-memory counterpart.
type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	FindByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
	Delete(ctx context.Context, id int64) error
}

type BookingCounter interface {
	Count(ctx context.Context, f domain.BookingFilter) (int64, error)
}

type Service struct {
	rooms    RoomStore
	bookings BookingCounter
	locker   lock.RoomLocker
	logger   zerolog.Logger
}

// NewService takes the same locker the booking service uses, so a delete and a new
// booking for one room never interleave.
func NewService(rooms RoomStore, bookings BookingCounter, locker lock.RoomLocker, logger zerolog.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Service{
		rooms:    rooms,
		bookings: bookings,
		locker:   locker,
		logger:   logger.With().Str("component", "catalog-service").Logger(),
	}
}

func (s *Service) CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	room := &domain.Room{
		RoomNumber:    strings.TrimSpace(req.RoomNumber),
		RoomType:      strings.TrimSpace(req.RoomType),
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		IsActive:      true,
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, translate(err)
	}

	s.logger.Info().Int64("room_id", room.ID).Str("room_number", room.RoomNumber).Msg("room created")
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	return s.rooms.List(ctx, activeOnly)
}

// UpdateRoom changes only the supplied fields. Price changes never touch existing bookings,
// which keep the rate they were created with.
func (s *Service) UpdateRoom(ctx context.Context, id int64, req UpdateRoomRequest) (*domain.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	if req.RoomNumber != nil {
		room.RoomNumber = strings.TrimSpace(*req.RoomNumber)
	}
	if req.RoomType != nil {
		room.RoomType = strings.TrimSpace(*req.RoomType)
	}
	if req.PricePerNight != nil {
		room.PricePerNight = *req.PricePerNight
	}
	if req.MaxGuests != nil {
		room.MaxGuests = *req.MaxGuests
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, translate(err)
	}
	return room, nil
}

// DeleteRoom refuses while any non-cancelled booking still references the room. The count
// and the delete run under the room lock.
func (s *Service) DeleteRoom(ctx context.Context, id int64) error {
	if _, err := s.rooms.FindByID(ctx, id); err != nil {
		return translate(err)
	}

	unlock, err := s.locker.Lock(ctx, id)
	if errors.Is(err, lock.ErrTimeout) {
		return ErrRoomBusy
	}
	if err != nil {
		return fmt.Errorf("lock room %d: %w", id, err)
	}
	defer unlock()

	active, err := s.bookings.Count(ctx, domain.BookingFilter{
		RoomID:          &id,
		ExcludeStatuses: []domain.BookingStatus{domain.BookingCancelled},
	})
	if err != nil {
		return fmt.Errorf("count bookings for room %d: %w", id, err)
	}
	if active > 0 {
		return ErrRoomInUse
	}

	if err := s.rooms.Delete(ctx, id); err != nil {
		return translate(err)
	}

	s.logger.Info().Int64("room_id", id).Msg("room deleted")
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrRoomNotFound
	case errors.Is(err, repository.ErrDuplicateRoomNumber):
		return ErrRoomNumberTaken
	default:
		return err
	}
}
