package booking

import (
	"time"

	"hotelbooking/internal/domain"
)

type CreateBookingInput struct {
	RoomID          int64
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	CheckInDate     time.Time
	CheckOutDate    time.Time
	NumberOfGuests  int
	SpecialRequests string
}

// UpdateBookingInput holds the fields to change; nil means keep the stored value.
type UpdateBookingInput struct {
	GuestName       *string
	GuestEmail      *string
	GuestPhone      *string
	CheckInDate     *time.Time
	CheckOutDate    *time.Time
	NumberOfGuests  *int
	SpecialRequests *string
	Status          *domain.BookingStatus
}

func (in UpdateBookingInput) changesDates() bool {
	return in.CheckInDate != nil || in.CheckOutDate != nil
}

// ListFilter narrows List and Export. Page and Limit are ignored by Export.
type ListFilter struct {
	Status      *domain.BookingStatus
	RoomID      *int64
	GuestEmail  *string
	CheckInFrom *time.Time
	CheckOutTo  *time.Time
	Page        int
	Limit       int
}

func (f ListFilter) storeFilter() domain.BookingFilter {
	return domain.BookingFilter{
		Status:      f.Status,
		RoomID:      f.RoomID,
		GuestEmail:  f.GuestEmail,
		CheckInFrom: f.CheckInFrom,
		CheckOutTo:  f.CheckOutTo,
	}
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListResult struct {
	Bookings   []domain.Booking `json:"bookings"`
	Pagination Pagination       `json:"pagination"`
}

// Availability is the answer to a room availability query, with a quote for the stay.
type Availability struct {
	RoomID        int64     `json:"roomId"`
	CheckInDate   time.Time `json:"checkInDate"`
	CheckOutDate  time.Time `json:"checkOutDate"`
	Available     bool      `json:"available"`
	Nights        int       `json:"numberOfNights"`
	PricePerNight int64     `json:"pricePerNight"`
	TotalPrice    int64     `json:"totalPrice"`
}
