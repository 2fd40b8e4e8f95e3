package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbooking/internal/domain"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RoomNumber    string    `gorm:"column:room_number;size:16;not null;uniqueIndex"`
	RoomType      string    `gorm:"column:room_type;size:32;not null"`
	PricePerNight int64     `gorm:"column:price_per_night;not null"`
	MaxGuests     int       `gorm:"column:max_guests;not null"`
	IsActive      bool      `gorm:"column:is_active;not null"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func toDomainRoom(m roomModel) *domain.Room {
	return &domain.Room{
		ID:            m.ID,
		RoomNumber:    m.RoomNumber,
		RoomType:      m.RoomType,
		PricePerNight: m.PricePerNight,
		MaxGuests:     m.MaxGuests,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func toRoomModel(r *domain.Room) roomModel {
	return roomModel{
		ID:            r.ID,
		RoomNumber:    r.RoomNumber,
		RoomType:      r.RoomType,
		PricePerNight: r.PricePerNight,
		MaxGuests:     r.MaxGuests,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if isDuplicateKey(tx.Error) {
			return ErrDuplicateRoomNumber
		}
		return fmt.Errorf("create room: %w", tx.Error)
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find room %d: %w", id, tx.Error)
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) FindByNumber(ctx context.Context, number string) (*domain.Room, error) {
	var m roomModel
	tx := r.db.WithContext(ctx).Where("room_number = ?", number).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find room %q: %w", number, tx.Error)
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	q := r.db.WithContext(ctx).Model(&roomModel{}).Order("room_number ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var rows []roomModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoom(m))
	}
	return out, nil
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	tx := r.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", room.ID).Updates(map[string]any{
		"room_number":     room.RoomNumber,
		"room_type":       room.RoomType,
		"price_per_night": room.PricePerNight,
		"max_guests":      room.MaxGuests,
		"is_active":       room.IsActive,
		"updated_at":      time.Now().UTC(),
	})
	if tx.Error != nil {
		if isDuplicateKey(tx.Error) {
			return ErrDuplicateRoomNumber
		}
		return fmt.Errorf("update room %d: %w", room.ID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	updated, err := r.FindByID(ctx, room.ID)
	if err != nil {
		return err
	}
	*room = *updated
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&roomModel{}, id)
	if tx.Error != nil {
		return fmt.Errorf("delete room %d: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
