// Package rest is the HTTP adapter. It owns the response envelope, the
// error-to-response routing and the route table; business rules live below
// it in the service layer.
package rest

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/shared"
)

// Envelope is the uniform response body. Every endpoint, success or
// failure, returns exactly this shape: success flag, stable numeric code,
// human-readable message, optional payload and a millisecond timestamp.
type Envelope struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// OK writes a success envelope. A nil payload drops the data key entirely
// instead of sending data: null.
func OK(c *gin.Context, data any) {
	OKMessage(c, shared.Success.Message(), data)
}

// OKMessage writes a success envelope with a custom message.
func OKMessage(c *gin.Context, message string, data any) {
	c.JSON(shared.Success.Status(), Envelope{
		Success:   true,
		Code:      shared.Success.Code(),
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// Fail writes a failure envelope for the kind. message overrides the
// kind's default when non-empty.
func Fail(c *gin.Context, kind shared.Kind, message string, data any) {
	if message == "" {
		message = kind.Message()
	}
	c.AbortWithStatusJSON(kind.Status(), Envelope{
		Success:   false,
		Code:      kind.Code(),
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
