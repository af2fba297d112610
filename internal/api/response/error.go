package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wonny/stockpulse/internal/api/middleware"
)

// ErrorResponse is the error body; message is fixed per endpoint so no
// upstream detail reaches the client
type ErrorResponse struct {
	Error string `json:"error"`
}

// Fixed error messages
const (
	MsgMissingSymbol    = "Missing symbol"
	MsgFetchBars        = "Failed to fetch bars"
	MsgFetchSnapshot    = "Failed to fetch snapshot"
	MsgSignInDisabled   = "Sign-in not available"
	MsgSignInFailed     = "Sign-in failed"
	MsgNotSignedIn      = "Not signed in"
	MsgInternalServer   = "Internal server error"
	MsgStreamNotAllowed = "Streaming unsupported"
)

// Error sends an error body and logs the cause
func Error(c *gin.Context, status int, message string, cause error) {
	event := log.Warn()
	if status >= 500 {
		event = log.Error()
	}
	event.
		Err(cause).
		Str("request_id", middleware.GetRequestID(c)).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Msg(message)

	if cause != nil {
		_ = c.Error(cause)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// BadRequest sends a 400 error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message, nil)
}

// Unauthorized sends a 401 error
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// NotFound sends a 404 error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// InternalError sends a 500 error
func InternalError(c *gin.Context, message string, cause error) {
	Error(c, http.StatusInternalServerError, message, cause)
}
