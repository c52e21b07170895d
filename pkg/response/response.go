package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the uniform envelope for every API response.
type Body struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Errors     any    `json:"errors,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}

// Success writes a success envelope with the given status.
func Success(c *gin.Context, status int, data any, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Body{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		RequestID:  c.GetString("request_id"),
	})
}

// Error writes a failure envelope with the given status.
func Error(c *gin.Context, status int, message string, errs any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, Body{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Errors:     errs,
		RequestID:  c.GetString("request_id"),
	})
}

// AbortError writes a failure envelope and aborts the handler chain.
func AbortError(c *gin.Context, status int, message string, errs any) {
	c.Abort()
	Error(c, status, message, errs)
}
