package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Error codes returned in the error envelope
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidPosition = "INVALID_POSITION"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// RequestIDHeader is echoed back as requestId in every envelope
const RequestIDHeader = "X-Request-ID"

// SuccessResponse is the envelope for successful responses
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId"`
}

// ErrorDetail carries the machine readable code and a human message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed responses
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"requestId"`
}

// SendSuccess writes data wrapped in the success envelope
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: requestID(c),
	})
}

// SendError writes the error envelope
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
		RequestID: requestID(c),
	})
}

// AbortWithError writes the error envelope and stops the handler chain
func AbortWithError(c *gin.Context, status int, code, message string) {
	SendError(c, status, code, message)
	c.Abort()
}

func requestID(c *gin.Context) string {
	if id := c.GetHeader(RequestIDHeader); id != "" {
		return id
	}
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := uuid.NewString()
	c.Set("request_id", id)
	return id
}
