package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hostelry/service-rooms/internal/application"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
	"github.com/hostelry/service-rooms/internal/middleware"
	"github.com/hostelry/service-rooms/internal/response"
)

const maxPageLimit = 100

// RoomHandler handles HTTP requests for room listing and booking.
type RoomHandler struct {
	rooms    *application.RoomService
	bookings *application.BookingService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms *application.RoomService, bookings *application.BookingService) *RoomHandler {
	return &RoomHandler{rooms: rooms, bookings: bookings}
}

// Routes returns the room endpoints.
func (h *RoomHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/api/v1/rooms", Access: AccessAnonymous, Handler: h.ListRooms},
		{Method: http.MethodGet, Path: "/api/v1/rooms/:id", Access: AccessAnonymous, Handler: h.GetRoom},
		{Method: http.MethodPatch, Path: "/api/v1/rooms/:id/book", Access: AccessAuthenticated, Handler: h.ToggleBooking},
	}
}

// ListRooms handles GET /api/v1/rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	filter, err := roomDomain.ParseFilter(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.rooms.ListRooms(c.Request.Context(), filter, parsePagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetRoom handles GET /api/v1/rooms/:id.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		response.BadRequest(c, "invalid room ID")
		return
	}

	result, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ToggleBooking handles PATCH /api/v1/rooms/:id/book. A vacant room is booked
// for the caller; the caller's own booking is reverted.
func (h *RoomHandler) ToggleBooking(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		response.BadRequest(c, "invalid room ID")
		return
	}

	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "authentication credentials were not provided")
		return
	}

	result, err := h.bookings.ToggleBooking(c.Request.Context(), roomID, identity)
	if err != nil {
		var forbidden *roomDomain.ForbiddenError
		if errors.As(err, &forbidden) {
			response.Fail(c, http.StatusUnauthorized, "FORBIDDEN", roomDomain.MessageForbidden)
			return
		}
		response.Error(c, err)
		return
	}

	response.Message(c, result.Message, result.Room)
}

// parsePagination reads page and limit. A missing or non-positive limit
// returns every matching room.
func parsePagination(c *gin.Context) roomDomain.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return roomDomain.Page{Number: page, Limit: limit}
}
