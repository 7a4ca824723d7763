package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hostelry/service-rooms/internal/middleware"
)

// Access is the authentication level a route demands.
type Access int

const (
	AccessAnonymous Access = iota
	AccessAuthenticated
)

func (a Access) String() string {
	if a == AccessAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Route binds an HTTP method and path to a handler with its access level.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler gin.HandlerFunc
}

// Register mounts routes on r. Authenticated routes get the auth middleware
// in front of their handler.
func Register(r gin.IRouter, verifier middleware.TokenVerifier, routes ...Route) {
	authMW := middleware.AuthMiddleware(verifier)
	for _, route := range routes {
		handlers := []gin.HandlerFunc{route.Handler}
		if route.Access == AccessAuthenticated {
			handlers = []gin.HandlerFunc{authMW, route.Handler}
		}
		r.Handle(route.Method, route.Path, handlers...)
	}
}

// parseRoomID reads the :id path parameter.
func parseRoomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
