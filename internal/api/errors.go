// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shelterwood/mnemo/internal/auth"
	"github.com/shelterwood/mnemo/internal/service/study"
	"github.com/shelterwood/mnemo/internal/session"
	"github.com/shelterwood/mnemo/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrCollectionNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, study.ErrItemNotFound),
		errors.Is(err, study.ErrCollectionNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, study.ErrRatingConflict):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, study.ErrInvalidRating),
		errors.Is(err, session.ErrInvalidMode),
		errors.Is(err, session.ErrInvalidScope):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, study.ErrCollectionNotFound),
		errors.Is(err, store.ErrCollectionNotFound):
		return "Collection not found"

	case errors.Is(err, study.ErrItemNotFound),
		errors.Is(err, store.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, study.ErrRatingConflict),
		errors.Is(err, store.ErrVersionConflict):
		return "Item was rated concurrently, please retry"

	case errors.Is(err, study.ErrInvalidRating):
		return "Invalid rating"

	case errors.Is(err, session.ErrInvalidMode):
		return "Invalid study mode"

	case errors.Is(err, session.ErrInvalidScope):
		return "Invalid study scope"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		var svcErr *study.ServiceError
		if errors.As(err, &svcErr) {
			switch svcErr.Operation {
			case "rate_item":
				return "Failed to apply rating"
			case "next_batch":
				return "Failed to build study batch"
			case "mastery_stats":
				return "Failed to compute mastery statistics"
			}
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'RateItemRequest.Rating' Error:Field
		// validation for 'Rating' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
