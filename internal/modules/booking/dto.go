package booking

import (
	"time"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/validator"
)

type CreateBookingRequest struct {
	RoomID          int64  `json:"roomId" binding:"required,min=1"`
	GuestName       string `json:"guestName" binding:"required,min=2,max=100"`
	GuestEmail      string `json:"guestEmail" binding:"required,email"`
	GuestPhone      string `json:"guestPhone" binding:"required,phone"`
	CheckInDate     string `json:"checkInDate" binding:"required,isodate"`
	CheckOutDate    string `json:"checkOutDate" binding:"required,isodate"`
	NumberOfGuests  int    `json:"numberOfGuests" binding:"required,min=1,max=10"`
	SpecialRequests string `json:"specialRequests" binding:"max=200"`
}

// toInput assumes binding already accepted both dates.
func (r CreateBookingRequest) toInput() CreateBookingInput {
	checkIn, _ := validator.ParseDate(r.CheckInDate)
	checkOut, _ := validator.ParseDate(r.CheckOutDate)
	return CreateBookingInput{
		RoomID:          r.RoomID,
		GuestName:       r.GuestName,
		GuestEmail:      r.GuestEmail,
		GuestPhone:      r.GuestPhone,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumberOfGuests:  r.NumberOfGuests,
		SpecialRequests: r.SpecialRequests,
	}
}

type UpdateBookingRequest struct {
	GuestName       *string `json:"guestName" binding:"omitempty,min=2,max=100"`
	GuestEmail      *string `json:"guestEmail" binding:"omitempty,email"`
	GuestPhone      *string `json:"guestPhone" binding:"omitempty,phone"`
	CheckInDate     *string `json:"checkInDate" binding:"omitempty,isodate"`
	CheckOutDate    *string `json:"checkOutDate" binding:"omitempty,isodate"`
	NumberOfGuests  *int    `json:"numberOfGuests" binding:"omitempty,min=1,max=10"`
	SpecialRequests *string `json:"specialRequests" binding:"omitempty,max=500"`
	Status          *string `json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
}

func (r UpdateBookingRequest) toInput() UpdateBookingInput {
	in := UpdateBookingInput{
		GuestName:       r.GuestName,
		GuestEmail:      r.GuestEmail,
		GuestPhone:      r.GuestPhone,
		NumberOfGuests:  r.NumberOfGuests,
		SpecialRequests: r.SpecialRequests,
	}
	if r.CheckInDate != nil {
		t, _ := validator.ParseDate(*r.CheckInDate)
		in.CheckInDate = &t
	}
	if r.CheckOutDate != nil {
		t, _ := validator.ParseDate(*r.CheckOutDate)
		in.CheckOutDate = &t
	}
	if r.Status != nil {
		status := domain.BookingStatus(*r.Status)
		in.Status = &status
	}
	return in
}

type ListBookingsQuery struct {
	Status       string `form:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	RoomID       int64  `form:"roomId" binding:"omitempty,min=1"`
	GuestEmail   string `form:"guestEmail" binding:"omitempty,email"`
	CheckInDate  string `form:"checkInDate" binding:"omitempty,isodate"`
	CheckOutDate string `form:"checkOutDate" binding:"omitempty,isodate"`
	Page         *int   `form:"page" binding:"omitempty,min=1"`
	Limit        *int   `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q ListBookingsQuery) toFilter() ListFilter {
	var f ListFilter
	if q.Status != "" {
		status := domain.BookingStatus(q.Status)
		f.Status = &status
	}
	if q.RoomID != 0 {
		roomID := q.RoomID
		f.RoomID = &roomID
	}
	if q.GuestEmail != "" {
		email := q.GuestEmail
		f.GuestEmail = &email
	}
	if q.CheckInDate != "" {
		t, _ := validator.ParseDate(q.CheckInDate)
		f.CheckInFrom = &t
	}
	if q.CheckOutDate != "" {
		t, _ := validator.ParseDate(q.CheckOutDate)
		f.CheckOutTo = &t
	}
	if q.Page != nil {
		f.Page = *q.Page
	}
	if q.Limit != nil {
		f.Limit = *q.Limit
	}
	return f
}

type AvailabilityQuery struct {
	CheckInDate  string `form:"checkInDate" binding:"required,isodate"`
	CheckOutDate string `form:"checkOutDate" binding:"required,isodate"`
}

func (q AvailabilityQuery) dates() (time.Time, time.Time) {
	checkIn, _ := validator.ParseDate(q.CheckInDate)
	checkOut, _ := validator.ParseDate(q.CheckOutDate)
	return checkIn, checkOut
}
