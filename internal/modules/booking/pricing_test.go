package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNights(t *testing.T) {
	base := time.Date(2026, time.January, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		checkOut time.Time
		want     int
	}{
		{name: "two whole days", checkOut: base.Add(48 * time.Hour), want: 2},
		{name: "one hour rounds up", checkOut: base.Add(time.Hour), want: 1},
		{name: "day and a minute", checkOut: base.Add(24*time.Hour + time.Minute), want: 2},
		{name: "same instant", checkOut: base, want: 0},
		{name: "half day before", checkOut: base.Add(-12 * time.Hour), want: 0},
		{name: "a day and a half before", checkOut: base.Add(-36 * time.Hour), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nights(base, tt.checkOut))
		})
	}
}

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, int64(2000), TotalPrice(2, 1000))
	assert.Equal(t, int64(0), TotalPrice(0, 1000))
}
