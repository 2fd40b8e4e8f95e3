package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"hotelbooking/internal/domain"
)

// MemoryBookingRepository keeps bookings in a map. Used by tests and by the API when no DSN is configured.
type MemoryBookingRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Booking
	now    func() time.Time
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		items: make(map[int64]domain.Booking),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryBookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	b.ID = r.nextID
	now := r.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	stored := *b
	stored.Room = nil
	r.items[b.ID] = stored
	return nil
}

func (r *MemoryBookingRepository) Update(ctx context.Context, b *domain.Booking, expected domain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if existing.Status != expected {
		return domain.ErrStatusChanged
	}
	b.CreatedAt = existing.CreatedAt
	b.PricePerNight = existing.PricePerNight
	b.UpdatedAt = r.now()
	stored := *b
	stored.Room = nil
	r.items[b.ID] = stored
	return nil
}

func (r *MemoryBookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBookingRepository) FindOne(ctx context.Context, f domain.BookingFilter) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Booking
	for _, b := range r.items {
		if !f.Match(&b) {
			continue
		}
		if found == nil || b.ID < found.ID {
			v := b
			found = &v
		}
	}
	return found, nil
}

func (r *MemoryBookingRepository) Find(ctx context.Context, f domain.BookingFilter, p domain.Page) ([]domain.Booking, error) {
	matched := r.matching(f)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if p.Offset >= len(matched) {
		return []domain.Booking{}, nil
	}
	matched = matched[p.Offset:]
	if p.Limit > 0 && p.Limit < len(matched) {
		matched = matched[:p.Limit]
	}
	return matched, nil
}

func (r *MemoryBookingRepository) Count(ctx context.Context, f domain.BookingFilter) (int64, error) {
	return int64(len(r.matching(f))), nil
}

func (r *MemoryBookingRepository) matching(f domain.BookingFilter) []domain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Booking, 0)
	for _, b := range r.items {
		if f.Match(&b) {
			out = append(out, b)
		}
	}
	return out
}

// MemoryRoomRepository is the in-memory counterpart of RoomRepository.
type MemoryRoomRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Room
}

func NewMemoryRoomRepository() *MemoryRoomRepository {
	return &MemoryRoomRepository{items: make(map[int64]domain.Room)}
}

func (r *MemoryRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.RoomNumber == room.RoomNumber {
			return ErrDuplicateRoomNumber
		}
	}
	r.nextID++
	room.ID = r.nextID
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	r.items[room.ID] = *room
	return nil
}

func (r *MemoryRoomRepository) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &room, nil
}

func (r *MemoryRoomRepository) FindByNumber(ctx context.Context, number string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.items {
		if room.RoomNumber == number {
			found := room
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryRoomRepository) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Room, 0, len(r.items))
	for _, room := range r.items {
		if activeOnly && !room.IsActive {
			continue
		}
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (r *MemoryRoomRepository) Update(ctx context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[room.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.items {
		if id != room.ID && other.RoomNumber == room.RoomNumber {
			return ErrDuplicateRoomNumber
		}
	}
	room.CreatedAt = existing.CreatedAt
	room.UpdatedAt = time.Now().UTC()
	r.items[room.ID] = *room
	return nil
}

func (r *MemoryRoomRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
