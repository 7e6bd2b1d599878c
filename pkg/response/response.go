package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// Envelope is the uniform JSON body for every API response
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK sends a 200 with a message
func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Data sends a 200 with a payload merged into the envelope
func Data(c *gin.Context, payload gin.H) {
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

// Created sends a 201 with a payload merged into the envelope
func Created(c *gin.Context, payload gin.H) {
	payload["success"] = true
	c.JSON(http.StatusCreated, payload)
}

// statusOf maps an error kind to its HTTP status
func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError is the single boundary translator: every domain failure funnels
// through here. Unclassified errors become a generic 500 so internals are
// not leaked to clients.
func FromError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, Envelope{
			Success: false,
			Message: "Internal server error",
		})
		return
	}
	c.JSON(statusOf(de.Kind), Envelope{Success: false, Message: de.Message})
}

// AbortWithError translates the error and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	FromError(c, err)
	c.Abort()
}
