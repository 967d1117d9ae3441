// Package response maps service errors to HTTP error kinds.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"todosome/internal/storage"
)

const (
	KindDuplicateEmail     = "DuplicateEmail"
	KindDeliveryFailed     = "DeliveryFailed"
	KindInvalidToken       = "InvalidToken"
	KindInvalidCredentials = "InvalidCredentials"
	KindEmailNotVerified   = "EmailNotVerified"
	KindUnauthorized       = "Unauthorized"
	KindUserNotFound       = "UserNotFound"
	KindValidationError    = "ValidationError"
	KindTaskNotFound       = "TaskNotFound"
	KindInternal           = "Internal"
)

// ErrorBody is a body of every failed response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error writes error body and aborts the chain
func Error(c *gin.Context, status int, kind string, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: kind, Message: message})
}

// FromError picks status and kind for err, unknown errors become Internal
func FromError(c *gin.Context, err error) {
	status, kind, message := Classify(err)
	if kind == KindInternal {
		_ = c.Error(err)
	}
	Error(c, status, kind, message)
}

func Classify(err error) (status int, kind string, message string) {
	switch {
	case errors.Is(err, storage.ErrUnauthorized), errors.Is(err, storage.ErrTokenExpired):
		return http.StatusUnauthorized, KindUnauthorized, "Not authorized"
	case errors.Is(err, storage.ErrUserExists):
		return http.StatusBadRequest, KindDuplicateEmail, "User already exists"
	case errors.Is(err, storage.ErrDeliveryFailed):
		return http.StatusInternalServerError, KindDeliveryFailed, "Failed to send verification email. Please try again."
	case errors.Is(err, storage.ErrTokenInvalid):
		return http.StatusBadRequest, KindInvalidToken, "Invalid verification token"
	case errors.Is(err, storage.ErrInvalidCredentials):
		return http.StatusUnauthorized, KindInvalidCredentials, "Invalid email or password"
	case errors.Is(err, storage.ErrUserNotConfirmedEmail):
		return http.StatusUnauthorized, KindEmailNotVerified, "Please verify your email first"
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, KindUserNotFound, "User not found"
	case errors.Is(err, storage.ErrTaskNotFound):
		return http.StatusNotFound, KindTaskNotFound, "Task not found"
	case errors.Is(err, storage.ErrInvalidArgument):
		return http.StatusBadRequest, KindValidationError, "Invalid request"
	default:
		return http.StatusInternalServerError, KindInternal, "Internal server error"
	}
}

// Validation reports failed request binding
func Validation(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, KindValidationError, err.Error())
}
