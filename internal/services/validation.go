package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Shehriyar31/pp-Live/internal/models"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var validationErrs validator.ValidationErrors
	if errors.As(validationErr, &validationErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range validationErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// StatusForError maps domain errors to HTTP status codes. Anything
// unrecognized is an internal error.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrAmountMismatch),
		errors.Is(err, models.ErrBelowMinimum),
		errors.Is(err, models.ErrAlreadyActedToday),
		errors.Is(err, models.ErrAlreadySpunToday),
		errors.Is(err, models.ErrRequestAlreadyResolved):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
