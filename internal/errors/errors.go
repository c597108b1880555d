package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email has already been taken")
	// ErrCategoryInUse is returned when deleting a category that still has products.
	ErrCategoryInUse = errors.New("category still has products")
	// ErrOwnAccount is returned when an admin tries to delete their own account.
	ErrOwnAccount = errors.New("cannot delete your own account")
	// ErrLastAdmin is returned when deleting the last remaining admin.
	ErrLastAdmin = errors.New("cannot delete the last admin")
	// ErrImageStorage is returned when a file write or delete failed.
	ErrImageStorage = errors.New("image storage failure")
)

// ValidationError carries a per-field message map for boundary
// validation failures. It never persists partial state.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty validation error to accumulate into.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for a field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e, or nil when no field failed.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Errors: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		he := NewHTTPError(http.StatusUnprocessableEntity, "validation failed", "VALIDATION_FAILED")
		he.Fields = ve.Fields
		return he
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCategoryNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CATEGORY_NOT_FOUND")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrCategoryInUse):
		return NewHTTPError(http.StatusConflict, err.Error(), "CATEGORY_IN_USE")
	case errors.Is(err, ErrOwnAccount):
		return NewHTTPError(http.StatusConflict, err.Error(), "OWN_ACCOUNT")
	case errors.Is(err, ErrLastAdmin):
		return NewHTTPError(http.StatusConflict, err.Error(), "LAST_ADMIN")
	case errors.Is(err, ErrImageStorage):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "STORAGE_FAILURE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
