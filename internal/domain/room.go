package domain

import "time"

type Room struct {
	ID            int64     `json:"id"`
	RoomNumber    string    `json:"roomNumber"`
	RoomType      string    `json:"roomType"`
	PricePerNight int64     `json:"pricePerNight"`
	MaxGuests     int       `json:"maxGuests"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
