package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/go-playground/validator/v10"
)

type APIResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func write(w http.ResponseWriter, statusCode int, body APIResponse) {
	if err := WriteJson(w, statusCode, body); err != nil {
		slog.Error("Failed to write response", slog.Int("status", statusCode), slog.String("error", err.Error()))
	}
}

func failure(e *ErrorResponse) APIResponse {
	return APIResponse{Success: false, Message: e.Message, Error: e}
}

func Success(w http.ResponseWriter, statusCode int, data any) {
	SuccessWithMessage(w, statusCode, "", data)
}

func SuccessWithMessage(w http.ResponseWriter, statusCode int, message string, data any) {
	write(w, statusCode, APIResponse{Success: true, Message: message, Data: data})
}

// Error renders an AppError as-is. Anything else becomes a generic 500 so
// driver and Redis messages never reach the client.
func Error(w http.ResponseWriter, err error) {

	appErr, ok := errors.IsAppError(err)
	if !ok {
		write(w, http.StatusInternalServerError, failure(&ErrorResponse{
			Code:    errors.ErrCodeInternal,
			Message: "An unexpected error occurred",
		}))
		return
	}

	body := &ErrorResponse{Code: appErr.Code, Message: appErr.Message}
	if appErr.Detail != "" {
		body.Details = []string{appErr.Detail}
	}

	write(w, appErr.StatusCode, failure(body))
}

// ValidationError lists every failed rule, one detail per field.
func ValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {

	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		details = append(details, describe(fe))
	}

	write(w, http.StatusBadRequest, failure(&ErrorResponse{
		Code:    errors.ErrCodeValidation,
		Message: "Validation failed",
		Details: details,
	}))
}

// fieldPath drops the root struct name, keeping positions inside slices,
// e.g. "Items[1].Quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}

	return fe.Field()
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field %s is required", field)
	case "min":
		return fmt.Sprintf("Field %s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("Field %s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Field %s must be one of [%s]", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("Field %s must be numeric", field)
	case "len":
		return fmt.Sprintf("Field %s must be exactly %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("Field %s is invalid: %s=%s", field, fe.Tag(), fe.Param())
	}
}
