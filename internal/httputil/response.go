// Package httputil provides the shared JSON response envelope.
package httputil

import "github.com/gin-gonic/gin"

// ErrorBody is the failure envelope. Success is always false.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RespondOK writes the success envelope {"success": true, "data": ...}.
func RespondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondError writes a standardized JSON error response and aborts the request.
func RespondError(c *gin.Context, status int, code, message string) {
	Abort(c, status, ErrorBody{Code: code, Message: message})
}

// Abort writes body as the failure envelope, filling in the request ID from the
// Gin context (set by the request ID middleware), and aborts the request.
func Abort(c *gin.Context, status int, body ErrorBody) {
	body.Success = false

	if rid, exists := c.Get("request_id"); exists {
		if s, ok := rid.(string); ok {
			body.RequestID = s
		}
	}

	c.AbortWithStatusJSON(status, body)
}
