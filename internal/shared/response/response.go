package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageBody là body lỗi/thông báo chung: {"message": "...", "code": "..."}
type MessageBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationBody liệt kê toàn bộ lỗi validate của payload
type ValidationBody struct {
	Errors []string `json:"errors"`
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageBody{Message: message})
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, MessageBody{Message: message, Code: code})
}

// ErrorWithBody writes a failure whose body shape is owned by the endpoint.
// Statuses below 400 are raised to 400.
func ErrorWithBody(c *gin.Context, statusCode int, body interface{}) {
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusBadRequest
	}
	c.JSON(statusCode, body)
}

func ValidationErrors(c *gin.Context, messages []string) {
	if messages == nil {
		messages = []string{}
	}
	c.JSON(http.StatusBadRequest, ValidationBody{Errors: messages})
}

// Common error responses
func NotFound(c *gin.Context, message string) {
	Message(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context, message string) {
	Message(c, http.StatusInternalServerError, message)
}
