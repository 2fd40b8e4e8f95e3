package booking

import (
	"context"

	"hotelbooking/internal/domain"
)

// BookingStore persists bookings. FindOne returns nil, nil when nothing matches;
// FindByID and Update return domain.ErrNotFound for a missing id. Update only writes
// while the stored status equals expected and returns domain.ErrStatusChanged otherwise.
type BookingStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindOne(ctx context.Context, f domain.BookingFilter) (*domain.Booking, error)
	Find(ctx context.Context, f domain.BookingFilter, p domain.Page) ([]domain.Booking, error)
	Count(ctx context.Context, f domain.BookingFilter) (int64, error)
	Insert(ctx context.Context, b *domain.Booking) error
	Update(ctx context.Context, b *domain.Booking, expected domain.BookingStatus) error
}

// RoomDirectory looks rooms up by id. A missing room is domain.ErrNotFound.
type RoomDirectory interface {
	FindByID(ctx context.Context, id int64) (*domain.Room, error)
}
