package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Business error codes surfaced to API callers.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeNotOwner            = "ACCESS_DENIED"
	CodeInvalidBookingState = "INVALID_BOOKING_STATE"
	CodeBookingNotPayable   = "BOOKING_NOT_PAYABLE"
	CodeInvalidDateRange    = "INVALID_DATE_RANGE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodePromoExpired        = "PROMO_EXPIRED"
	CodePromoExhausted      = "PROMO_EXHAUSTED"
	CodeInvalidPromoCode    = "INVALID_PROMO_CODE"
	CodeVendorNotOnboarded  = "VENDOR_NOT_ONBOARDED"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
)

// AppError is a business error with a stable code and HTTP status.
// Handlers pass these through RespondError; anything else becomes a 500.
type AppError struct {
	Code    string
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return e.Message
}

func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Status: http.StatusNotFound}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeNotOwner, Message: message, Status: http.StatusForbidden}
}

func BadRequest(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusBadRequest}
}

func Unauthorized(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusUnauthorized}
}

// RespondError writes the JSON error body for err. Unknown error types are
// reported as a generic 500 so internals never leak to callers.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"code": appErr.Code, "error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"code": "SERVER_ERROR", "error": "internal server error"})
}

var (
	ErrUserIDNotFound = errors.New("authentication required: user ID not found")
	ErrUnauthorized   = errors.New("unauthorized access")
)
