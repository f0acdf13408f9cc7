package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// cart & order domain codes
	ErrCodeEmptyOrder           = "EMPTY_ORDER"
	ErrCodeMissingAddress       = "MISSING_ADDRESS"
	ErrCodeMissingPaymentMode   = "MISSING_PAYMENT_MODE"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeInvalidOrderLine     = "INVALID_ORDER_LINE"
	ErrCodeMultiVendorOrder     = "MULTI_VENDOR_ORDER_UNSUPPORTED"
	ErrCodeOrderNotCancellable  = "ORDER_NOT_CANCELLABLE"
	ErrCodeOrderStatusTerminal  = "ORDER_STATUS_TERMINAL"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeItemNotFound         = "ITEM_NOT_FOUND"
	ErrCodeInvalidPaymentStatus = "INVALID_PAYMENT_STATUS"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrCodeConflict, message, http.StatusConflict)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

// Validation-class errors carrying a domain code.

func EmptyOrderError() *AppError {
	return NewAppError(ErrCodeEmptyOrder, "Order must contain at least one item", http.StatusBadRequest)
}

func MissingAddressError() *AppError {
	return NewAppError(ErrCodeMissingAddress, "Delivery address is required", http.StatusBadRequest)
}

func MissingPaymentModeError() *AppError {
	return NewAppError(ErrCodeMissingPaymentMode, "Payment mode is required", http.StatusBadRequest)
}

func InvalidQuantityError(message string) *AppError {
	return NewAppError(ErrCodeInvalidQuantity, message, http.StatusBadRequest)
}

func InvalidOrderLineError(message string) *AppError {
	return NewAppError(ErrCodeInvalidOrderLine, message, http.StatusBadRequest)
}

func MultiVendorOrderError(message string) *AppError {
	return NewAppError(ErrCodeMultiVendorOrder, message, http.StatusBadRequest)
}

func OrderNotCancellableError(status string) *AppError {
	return NewAppError(ErrCodeOrderNotCancellable, fmt.Sprintf("Order in status '%s' cannot be cancelled", status), http.StatusBadRequest)
}

func OrderStatusTerminalError(status string) *AppError {
	return NewAppError(ErrCodeOrderStatusTerminal, fmt.Sprintf("Order in status '%s' can no longer change", status), http.StatusBadRequest)
}

func InvalidPaymentStatusError(status string) *AppError {
	return NewAppError(ErrCodeInvalidPaymentStatus, fmt.Sprintf("Unknown payment status '%s'", status), http.StatusBadRequest)
}

// NotFound-class errors carrying a domain code.

func ProductNotFoundError(productID string) *AppError {
	return NewAppError(ErrCodeProductNotFound, "Product not found: "+productID, http.StatusNotFound)
}

func ItemNotFoundError(productID string) *AppError {
	return NewAppError(ErrCodeItemNotFound, "Item not found in the cart: "+productID, http.StatusNotFound)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
