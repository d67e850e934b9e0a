// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"whatsapp_crm_backend/platform/apperr"
	"whatsapp_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// contextLoggerKey is the gin context key under which ErrorLogger stores the
// application logger for HandleError.
const contextLoggerKey = "httpkit.logger"

// ErrorLogger exposes the application logger to HandleError so internal
// failures are logged with their cause before the generic body is written.
func ErrorLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextLoggerKey, log)
		c.Next()
	}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// HandleError maps domain errors to HTTP responses. Typed *apperr.Error values
// use their Kind for the status code; internal errors get a generic body so
// the underlying cause never reaches the client. Untyped errors map to 500.
// Returns true if an error was handled.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		if domainErr.Kind == apperr.KindInternal {
			logInternal(c, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return true
		}
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	logInternal(c, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	return true
}

// logInternal records the underlying cause of a generic 500. The response
// body stays opaque; this log line is the only place the error text lands.
func logInternal(c *gin.Context, err error) {
	value, ok := c.Get(contextLoggerKey)
	if !ok {
		return
	}
	log, ok := value.(*logger.Logger)
	if !ok {
		return
	}
	log.DatabaseError(c.Request.Method+" "+c.FullPath(), err)
}
