package booking

import "time"

const day = 24 * time.Hour

// Nights rounds the stay up to whole days, so a partial day counts as a night.
// A check-out at or before check-in yields zero or a negative count.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	n := d / day
	if d%day > 0 {
		n++
	}
	return int(n)
}

func TotalPrice(nights int, pricePerNight int64) int64 {
	return int64(nights) * pricePerNight
}
