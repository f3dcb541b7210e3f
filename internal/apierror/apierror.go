package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"

	// Precondition violations specific to the admission and transaction
	// pipelines. They are rejected before any state mutation.
	ErrDuplicateEntry       ErrorCode = "DUPLICATE_ENTRY"
	ErrInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrProductUnavailable   ErrorCode = "PRODUCT_UNAVAILABLE"
	ErrSellerNotPayable     ErrorCode = "SELLER_NOT_PAYABLE"
	ErrAmountMismatch       ErrorCode = "AMOUNT_MISMATCH"
	ErrPaymentAuthorization ErrorCode = "PAYMENT_AUTHORIZATION_FAILED"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// MapErrorToHTTPStatus maps engine error codes to HTTP statuses. Precondition
// violations are 400, unknown entities 404, terminal-state conflicts 409, and
// collaborator failures 500.
func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusConflict
		case ErrBadRequest, ErrInvalidInput, ErrDuplicateEntry, ErrInvalidTransition,
			ErrProductUnavailable, ErrSellerNotPayable, ErrAmountMismatch:
			return http.StatusBadRequest
		case ErrPaymentAuthorization, ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// Code extracts the engine error code from an error, if it carries one.
func Code(err error) (ErrorCode, bool) {
	apiErr, ok := err.(APIError)
	if !ok {
		return "", false
	}
	return apiErr.Code, true
}
