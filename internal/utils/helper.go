package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	appErrors "github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// Orders carry at most a few hundred lines; anything larger is not a checkout.
	MaxBodyBytes = 1 << 20
)

// DecodeJSONBody decodes a single JSON object into dest. Unknown fields are
// rejected so a misspelt "quantity" is not silently read as zero.
func DecodeJSONBody(r *http.Request, dest any) error {

	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		slog.Error("Failed to read request body", slog.String("error", err.Error()), slog.String("endpoint", r.URL.Path))
		return fmt.Errorf("failed to read request body: %w", err)
	}

	switch {
	case len(body) == 0:
		return errors.New("request body cannot be empty")
	case len(body) > MaxBodyBytes:
		return fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		slog.Warn("Failed to parse request JSON", slog.String("error", err.Error()), slog.String("endpoint", r.URL.Path))
		return fmt.Errorf("invalid JSON format: %w", err)
	}

	if decoder.More() {
		return errors.New("invalid JSON format: body must contain a single object")
	}

	return nil
}

func ValidateStruct(validate *validator.Validate, data any) error {
	if err := validate.Struct(data); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			slog.Warn("User input validation failed",
				slog.String("error", validationErrs.Error()),
			)
			return fmt.Errorf("validation error: %w", validationErrs)
		}

		slog.Error("Unexpected validation error", slog.String("error", err.Error()))
		return fmt.Errorf("unexpected validation error: %w", err)
	}
	return nil
}

// ParseID reads a UUID path value.
func ParseID(r *http.Request, key string) (uuid.UUID, error) {
	raw := r.PathValue(key)
	if raw == "" {
		return uuid.Nil, appErrors.AddValidationError(key, "is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, appErrors.AddValidationError(key, "must be a valid UUID").WithError(err)
	}

	return id, nil
}

// ParsePagination reads page and pageSize query values, falling back to
// defaults for missing or out-of-range input.
func ParsePagination(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	return page, pageSize
}
