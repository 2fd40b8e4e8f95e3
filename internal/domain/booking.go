package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

var bookingStatuses = map[BookingStatus]bool{
	BookingPending:   false,
	BookingConfirmed: false,
	BookingCancelled: true,
	BookingCompleted: true,
}

// IsValid reports whether s is one of the four known statuses.
func (s BookingStatus) IsValid() bool {
	_, ok := bookingStatuses[s]
	return ok
}

// IsTerminal reports whether s is cancelled or completed.
func (s BookingStatus) IsTerminal() bool {
	return bookingStatuses[s]
}

func (s BookingStatus) String() string { return string(s) }

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return status, nil
}

type Booking struct {
	ID              int64         `json:"id"`
	RoomID          int64         `json:"roomId"`
	GuestName       string        `json:"guestName"`
	GuestEmail      string        `json:"guestEmail"`
	GuestPhone      string        `json:"guestPhone"`
	CheckInDate     time.Time     `json:"checkInDate"`
	CheckOutDate    time.Time     `json:"checkOutDate"`
	NumberOfGuests  int           `json:"numberOfGuests"`
	NumberOfNights  int           `json:"numberOfNights"`
	PricePerNight   int64         `json:"pricePerNight"`
	TotalPrice      int64         `json:"totalPrice"`
	Status          BookingStatus `json:"status"`
	SpecialRequests string        `json:"specialRequests,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	Room *Room `json:"room,omitempty"`
}
