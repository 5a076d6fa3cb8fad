package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Object access errors
	ErrorTypeItemNotFound           ErrorType = "ITEM_NOT_FOUND"
	ErrorTypeItemAlreadyExists      ErrorType = "ITEM_ALREADY_EXISTS"
	ErrorTypeItemAccessUnauthorized ErrorType = "ITEM_ACCESS_UNAUTHORIZED"
	ErrorTypeInvalidAttributeChange ErrorType = "INVALID_ATTRIBUTE_CHANGE"
	ErrorTypeInvalidUsage           ErrorType = "INVALID_USAGE"
	ErrorTypeMultipleJoinsFound     ErrorType = "MULTIPLE_JOINS_FOUND"

	// Object model errors
	ErrorTypeIdentityAlreadyAssigned ErrorType = "IDENTITY_ALREADY_ASSIGNED"
	ErrorTypeInvalidPartition        ErrorType = "INVALID_PARTITION"
	ErrorTypeMissingPartition        ErrorType = "MISSING_PARTITION"
	ErrorTypeDataIntegrity           ErrorType = "DATA_INTEGRITY"

	// Request errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// Application errors
	ErrorTypeInternal           ErrorType = "INTERNAL"
	ErrorTypeServiceUnavailable ErrorType = "SERVICE_UNAVAILABLE"
)

// ErrMissingObjectID is a caller bug: an update was attempted on an entity
// that never received an identity.
var ErrMissingObjectID = errors.New("object_id must be set before an update")

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

func newAppError(errType ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// Constructor functions for the object access taxonomy

// NewItemNotFoundError is returned when no row carries the requested object_id.
func NewItemNotFoundError(message string) *AppError {
	return newAppError(ErrorTypeItemNotFound, http.StatusNotFound, message)
}

// NewItemAlreadyExistsError is returned when a create collides with an existing object_id.
func NewItemAlreadyExistsError(message string) *AppError {
	return newAppError(ErrorTypeItemAlreadyExists, http.StatusConflict, message)
}

// NewItemAccessUnauthorizedError is returned when the acting user does not own the item.
func NewItemAccessUnauthorizedError(message string) *AppError {
	return newAppError(ErrorTypeItemAccessUnauthorized, http.StatusUnauthorized, message)
}

// NewInvalidAttributeChangeError is returned when an update touches a core attribute.
func NewInvalidAttributeChangeError(attribute string) *AppError {
	return newAppError(
		ErrorTypeInvalidAttributeChange,
		http.StatusBadRequest,
		fmt.Sprintf("Attribute `%s` cannot be changed once set", attribute),
	).WithDetails(map[string]interface{}{"attribute": attribute})
}

// NewInvalidUsageError is returned for malformed filter arguments.
func NewInvalidUsageError(message string) *AppError {
	return newAppError(ErrorTypeInvalidUsage, http.StatusBadRequest, message)
}

// NewMultipleJoinsFoundError is returned when a pair lookup is ambiguous.
func NewMultipleJoinsFoundError(message string) *AppError {
	return newAppError(ErrorTypeMultipleJoinsFound, http.StatusConflict, message)
}

// NewIdentityAlreadyAssignedError is returned when an id is generated twice.
func NewIdentityAlreadyAssignedError(objectID string) *AppError {
	return newAppError(
		ErrorTypeIdentityAlreadyAssigned,
		http.StatusInternalServerError,
		fmt.Sprintf("object_id already assigned: '%s'", objectID),
	)
}

// NewInvalidPartitionError is returned when a stored partition key lacks the delimiter.
func NewInvalidPartitionError(message string) *AppError {
	return newAppError(ErrorTypeInvalidPartition, http.StatusInternalServerError, message)
}

// NewMissingPartitionError is returned when a stored row has no partition key.
func NewMissingPartitionError(message string) *AppError {
	return newAppError(ErrorTypeMissingPartition, http.StatusInternalServerError, message)
}

// NewDataIntegrityError flags stored data that violates an invariant.
func NewDataIntegrityError(message string) *AppError {
	return newAppError(ErrorTypeDataIntegrity, http.StatusInternalServerError, message)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewServiceUnavailableError creates an error for a dependency that is
// refusing calls
func NewServiceUnavailableError(message string) *AppError {
	return newAppError(ErrorTypeServiceUnavailable, http.StatusServiceUnavailable, message)
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsItemNotFound checks if an error is an item not found error
func IsItemNotFound(err error) bool {
	return IsType(err, ErrorTypeItemNotFound)
}

// IsItemAlreadyExists checks if an error is an item already exists error
func IsItemAlreadyExists(err error) bool {
	return IsType(err, ErrorTypeItemAlreadyExists)
}

// IsItemAccessUnauthorized checks if an error is an ownership violation
func IsItemAccessUnauthorized(err error) bool {
	return IsType(err, ErrorTypeItemAccessUnauthorized)
}

// IsInvalidAttributeChange checks if an error is a core attribute change
func IsInvalidAttributeChange(err error) bool {
	return IsType(err, ErrorTypeInvalidAttributeChange)
}

// IsInvalidUsage checks if an error is an invalid usage error
func IsInvalidUsage(err error) bool {
	return IsType(err, ErrorTypeInvalidUsage)
}

// IsDataIntegrity checks if an error is a data integrity error
func IsDataIntegrity(err error) bool {
	return IsType(err, ErrorTypeDataIntegrity)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}
