package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrStatusChanged is returned by a conditional booking update when the stored status
// no longer matches the status the caller read.
var ErrStatusChanged = errors.New("booking status changed concurrently")

// DateRange is a half-open interval [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Overlaps uses the interval-intersection test, so back-to-back ranges do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// BookingFilter is the predicate understood by booking stores. Zero fields are ignored;
// set fields are combined with AND.
type BookingFilter struct {
	Status      *BookingStatus
	RoomID      *int64
	GuestEmail  *string
	CheckInFrom *time.Time // check_in_date >= value
	CheckOutTo  *time.Time // check_out_date <= value

	Overlapping     *DateRange
	ExcludeStatuses []BookingStatus
	ExcludeID       *int64
}

// Match evaluates the filter in memory.
func (f BookingFilter) Match(b *Booking) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.RoomID != nil && b.RoomID != *f.RoomID {
		return false
	}
	if f.GuestEmail != nil && b.GuestEmail != *f.GuestEmail {
		return false
	}
	if f.CheckInFrom != nil && b.CheckInDate.Before(*f.CheckInFrom) {
		return false
	}
	if f.CheckOutTo != nil && b.CheckOutDate.After(*f.CheckOutTo) {
		return false
	}
	if f.Overlapping != nil && !f.Overlapping.Overlaps(DateRange{CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}) {
		return false
	}
	for _, s := range f.ExcludeStatuses {
		if b.Status == s {
			return false
		}
	}
	if f.ExcludeID != nil && b.ID == *f.ExcludeID {
		return false
	}
	return true
}

// Page selects a window of an ordered result. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}
