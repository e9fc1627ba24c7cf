package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON body: success, message, data.
// Error carries the raw cause only when the server is configured to expose it.
type APIResponse[T any] struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      T                 `json:"data"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Error     interface{}       `json:"error,omitempty"`
}

// Success writes a success envelope.
func Success[T any](ctx *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: ctx.GetString("request_id"),
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes a failure envelope.
func Error[T any](ctx *gin.Context, status int, message string, details map[string]string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Success:   false,
		Message:   message,
		RequestID: ctx.GetString("request_id"),
		Details:   details,
		Error:     err,
	}
	ctx.JSON(status, resp)
	return resp
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string) {
	Error[any](ctx, status, message, nil, nil)
	ctx.Abort()
}

// NoContent answers 204 without a body.
func NoContent(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}
