package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guest struct {
	Name  string `json:"guestName" validate:"required,min=2"`
	Phone string `json:"guestPhone" validate:"required,phone"`
	Date  string `form:"checkInDate" validate:"omitempty,isodate"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(guest{Name: "Ana", Phone: "+77011234567", Date: "2030-05-01"}))

	errs := Validate(guest{Name: "A", Phone: "0123", Date: "May 1st"})
	assert.Equal(t, map[string]string{
		"guestName":   "min",
		"guestPhone":  "phone",
		"checkInDate": "isodate",
	}, errs)
}

func TestFields_NonValidationError(t *testing.T) {
	assert.Nil(t, Fields(errors.New("unexpected EOF")))
	assert.Nil(t, Fields(nil))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC), d)

	ts, err := ParseDate("2026-01-02T15:00:00+05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC), ts)
	assert.Equal(t, time.UTC, ts.Location())

	_, err = ParseDate("02/01/2026")
	assert.Error(t, err)
}

func TestRegisterGinIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterGin()
		RegisterGin()
	})
}
