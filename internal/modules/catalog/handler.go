package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"hotelbooking/internal/pkg/response"
	"hotelbooking/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	validator.RegisterGin()
	return &Handler{
		service: service,
		logger:  logger.With().Str("component", "catalog-handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/rooms", h.CreateRoom)
	rg.GET("/rooms", h.ListRooms)
	rg.GET("/rooms/:id", h.GetRoom)
	rg.PATCH("/rooms/:id", h.UpdateRoom)
	rg.DELETE("/rooms/:id", h.DeleteRoom)
}

// CreateRoom handles POST /rooms
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, room)
}

// ListRooms handles GET /rooms?active=true
func (h *Handler) ListRooms(c *gin.Context) {
	var q ListRoomsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	rooms, err := h.service.ListRooms(c.Request.Context(), q.Active)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rooms)
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, room)
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	room, err := h.service.UpdateRoom(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, room)
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRoom(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "room not found")
	case errors.Is(err, ErrRoomNumberTaken):
		response.Error(c, http.StatusConflict, response.CodeRoomTaken, "room number already exists")
	case errors.Is(err, ErrRoomInUse):
		response.Error(c, http.StatusConflict, response.CodeRoomInUse, "room has bookings that are not cancelled")
	case errors.Is(err, ErrRoomBusy):
		response.Error(c, http.StatusConflict, response.CodeConflict, "room is being booked by another request, try again")
	default:
		_ = c.Error(err)
		h.logger.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
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

func roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid id")
		return 0, false
	}
	return id, true
}
