package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbooking/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RoomID          int64     `gorm:"column:room_id;not null;index:idx_bookings_room_dates,priority:1"`
	GuestName       string    `gorm:"column:guest_name;size:100;not null"`
	GuestEmail      string    `gorm:"column:guest_email;size:255;not null;index"`
	GuestPhone      string    `gorm:"column:guest_phone;size:32;not null"`
	CheckInDate     time.Time `gorm:"column:check_in_date;not null;index:idx_bookings_room_dates,priority:2"`
	CheckOutDate    time.Time `gorm:"column:check_out_date;not null;index:idx_bookings_room_dates,priority:3"`
	NumberOfGuests  int       `gorm:"column:number_of_guests;not null"`
	NumberOfNights  int       `gorm:"column:number_of_nights;not null"`
	PricePerNight   int64     `gorm:"column:price_per_night;not null"`
	TotalPrice      int64     `gorm:"column:total_price;not null"`
	Status          string    `gorm:"column:status;size:16;not null;index"`
	SpecialRequests *string   `gorm:"column:special_requests;size:500"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var requests string
	if m.SpecialRequests != nil {
		requests = *m.SpecialRequests
	}

	return &domain.Booking{
		ID:              m.ID,
		RoomID:          m.RoomID,
		GuestName:       m.GuestName,
		GuestEmail:      m.GuestEmail,
		GuestPhone:      m.GuestPhone,
		CheckInDate:     m.CheckInDate.UTC(),
		CheckOutDate:    m.CheckOutDate.UTC(),
		NumberOfGuests:  m.NumberOfGuests,
		NumberOfNights:  m.NumberOfNights,
		PricePerNight:   m.PricePerNight,
		TotalPrice:      m.TotalPrice,
		Status:          domain.BookingStatus(m.Status),
		SpecialRequests: requests,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var requests *string
	if b.SpecialRequests != "" {
		v := b.SpecialRequests
		requests = &v
	}

	return bookingModel{
		ID:              b.ID,
		RoomID:          b.RoomID,
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		GuestPhone:      b.GuestPhone,
		CheckInDate:     b.CheckInDate.UTC(),
		CheckOutDate:    b.CheckOutDate.UTC(),
		NumberOfGuests:  b.NumberOfGuests,
		NumberOfNights:  b.NumberOfNights,
		PricePerNight:   b.PricePerNight,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		SpecialRequests: requests,
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
	}
}

func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return fmt.Errorf("insert booking: %w", tx.Error)
	}
	*b = *toDomainBooking(m)
	return nil
}

// Update writes b only while the stored status still equals expected. A row that exists
// with another status yields domain.ErrStatusChanged and is left untouched.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking, expected domain.BookingStatus) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", b.ID, string(expected)).
		Updates(map[string]any{
			"guest_name":       m.GuestName,
			"guest_email":      m.GuestEmail,
			"guest_phone":      m.GuestPhone,
			"check_in_date":    m.CheckInDate,
			"check_out_date":   m.CheckOutDate,
			"number_of_guests": m.NumberOfGuests,
			"number_of_nights": m.NumberOfNights,
			"total_price":      m.TotalPrice,
			"status":           m.Status,
			"special_requests": m.SpecialRequests,
			"updated_at":       time.Now().UTC(),
		})
	if tx.Error != nil {
		return fmt.Errorf("update booking %d: %w", b.ID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, b.ID); err != nil {
			return err
		}
		return domain.ErrStatusChanged
	}

	updated, err := r.FindByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *updated
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find booking %d: %w", id, tx.Error)
	}
	return toDomainBooking(m), nil
}

// FindOne returns the first booking matching f, or nil when nothing matches.
func (r *BookingRepository) FindOne(ctx context.Context, f domain.BookingFilter) (*domain.Booking, error) {
	var rows []bookingModel
	tx := applyBookingFilter(r.db.WithContext(ctx).Model(&bookingModel{}), f).
		Order("id ASC").
		Limit(1).
		Find(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("find booking: %w", tx.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomainBooking(rows[0]), nil
}

// Find returns matching bookings, newest first.
func (r *BookingRepository) Find(ctx context.Context, f domain.BookingFilter, p domain.Page) ([]domain.Booking, error) {
	q := applyBookingFilter(r.db.WithContext(ctx).Model(&bookingModel{}), f).
		Order("created_at DESC").
		Order("id DESC")
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}

	var rows []bookingModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) Count(ctx context.Context, f domain.BookingFilter) (int64, error) {
	var cnt int64
	tx := applyBookingFilter(r.db.WithContext(ctx).Model(&bookingModel{}), f).Count(&cnt)
	if tx.Error != nil {
		return 0, fmt.Errorf("count bookings: %w", tx.Error)
	}
	return cnt, nil
}

func applyBookingFilter(q *gorm.DB, f domain.BookingFilter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.RoomID != nil {
		q = q.Where("room_id = ?", *f.RoomID)
	}
	if f.GuestEmail != nil {
		q = q.Where("guest_email = ?", *f.GuestEmail)
	}
	if f.CheckInFrom != nil {
		q = q.Where("check_in_date >= ?", f.CheckInFrom.UTC())
	}
	if f.CheckOutTo != nil {
		q = q.Where("check_out_date <= ?", f.CheckOutTo.UTC())
	}
	if f.Overlapping != nil {
		q = q.Where("check_in_date < ? AND check_out_date > ?",
			f.Overlapping.CheckOut.UTC(), f.Overlapping.CheckIn.UTC())
	}
	if len(f.ExcludeStatuses) > 0 {
		statuses := make([]string, 0, len(f.ExcludeStatuses))
		for _, s := range f.ExcludeStatuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status NOT IN ?", statuses)
	}
	if f.ExcludeID != nil {
		q = q.Where("id <> ?", *f.ExcludeID)
	}
	return q
}
