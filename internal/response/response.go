package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelry/service-rooms/internal/domain"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response carrying data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Message writes a 200 response carrying a status message and optional data.
func Message(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Paginated writes a 200 response with a page of items.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       items,
		Pagination: &Pagination{Total: total, Page: page, Limit: limit},
	})
}

// Fail writes an error response with an explicit status and code.
func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Error maps a domain error onto the matching HTTP status. Unknown errors are
// reported as 500 with a generic message; the cause is attached to the gin
// context so the logging middleware records it.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		Fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidFilterParameter):
		Fail(c, http.StatusBadRequest, "INVALID_FILTER_PARAMETER", err.Error())
	case errors.Is(err, domain.ErrValidation):
		Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		Fail(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrConflict):
		Fail(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		_ = c.Error(err)
		Fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
