package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelry/service-rooms/internal/application"
	"github.com/hostelry/service-rooms/internal/middleware"
	"github.com/hostelry/service-rooms/internal/response"
)

// ProfileHandler serves the caller's own view of their bookings.
type ProfileHandler struct {
	rooms *application.RoomService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(rooms *application.RoomService) *ProfileHandler {
	return &ProfileHandler{rooms: rooms}
}

// Routes returns the profile endpoints.
func (h *ProfileHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/api/v1/profile/booked", Access: AccessAuthenticated, Handler: h.ListBookedRooms},
	}
}

// ListBookedRooms handles GET /api/v1/profile/booked.
func (h *ProfileHandler) ListBookedRooms(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "authentication credentials were not provided")
		return
	}

	result, err := h.rooms.ListRoomsHeldBy(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
