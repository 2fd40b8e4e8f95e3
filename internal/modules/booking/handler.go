package booking

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hotelbooking/internal/export"
	"hotelbooking/internal/pkg/response"
	"hotelbooking/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	service *Service
	logger  zerolog.Logger
	now     func() time.Time
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	validator.RegisterGin()
	return &Handler{
		service: service,
		logger:  logger.With().Str("component", "booking-handler").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/export", h.ExportBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id", h.UpdateBooking)
	rg.PATCH("/bookings/:id/confirm", h.ConfirmBooking)
	rg.PATCH("/bookings/:id/complete", h.CompleteBooking)
	rg.DELETE("/bookings/:id", h.CancelBooking)
	rg.GET("/rooms/:id/availability", h.RoomAvailability)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	in := req.toInput()
	if !in.CheckOutDate.After(in.CheckInDate) {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation,
			"check-out date must be after check-in date", map[string]string{"checkOutDate": "gtfield"})
		return
	}
	if in.CheckInDate.Before(startOfDay(h.now())) {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation,
			"check-in date must not be in the past", map[string]string{"checkInDate": "future"})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ListBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.ListBookings(c.Request.Context(), q.toFilter())
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Paginated(c, http.StatusOK, res.Bookings, res.Pagination)
}

func (h *Handler) ExportBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	rows, err := h.service.ExportBookings(c.Request.Context(), q.toFilter())
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, rows); err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	in := req.toInput()
	if in.CheckInDate != nil && in.CheckOutDate != nil && !in.CheckOutDate.After(*in.CheckInDate) {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation,
			"check-out date must be after check-in date", map[string]string{"checkOutDate": "gtfield"})
		return
	}
	if in.CheckInDate != nil && in.CheckInDate.Before(startOfDay(h.now())) {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation,
			"check-in date must not be in the past", map[string]string{"checkInDate": "future"})
		return
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) CompleteBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.CompleteBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) RoomAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	checkIn, checkOut := q.dates()
	res, err := h.service.CheckAvailability(c.Request.Context(), id, checkIn, checkOut)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrInvalid):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusBadRequest, response.CodeConflict, err.Error())
	default:
		_ = c.Error(err)
		h.logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("request failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "internal server error")
	}
}

func bindError(c *gin.Context, err error) {
	if fields := validator.Fields(err); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "invalid request", fields)
		return
	}
	response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid id")
		return 0, false
	}
	return id, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
