package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// Precondition reports a structural contract violation inside a pipeline
// stage. These are programming errors and are never retried.
func Precondition(stage, reason string) *AppError {
	return &AppError{
		Code:    ErrCodePrecondition,
		Message: fmt.Sprintf("%s: %s", stage, reason),
		Details: map[string]any{"stage": stage},
	}
}

// EngineFailure wraps an error returned by an external inference engine.
func EngineFailure(engine string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeEngineFailure,
		Message:   fmt.Sprintf("The %s engine failed to produce a result.", engine),
		Retryable: true,
		Details:   map[string]any{"engine": engine},
		Cause:     cause,
	}
}

// EngineBusy reports that no inference slot was available in time.
func EngineBusy(pool string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeEngineBusy,
		Message:   fmt.Sprintf("No free inference slot in %s.", pool),
		Retryable: true,
		Details:   map[string]any{"pool": pool},
		Cause:     cause,
	}
}

// Cancelled reports that the caller abandoned the invocation at a stage boundary.
func Cancelled(stage string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeCancelled,
		Message: fmt.Sprintf("Processing was cancelled before %s.", stage),
		Details: map[string]any{"stage": stage},
		Cause:   cause,
	}
}

// ServiceUnavailable creates a new AppError for a collaborator that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long. Please try again.",
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		Details: details,
	}
}

// Conflict creates a new AppError for a conflict with the current state of the resource.
func Conflict(reason string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: reason}
}

// InvalidTransition reports a lifecycle transition that is not allowed.
func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf("Cannot move from %s to %s.", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// InvalidFormat creates a new AppError for a payload with an unexpected shape.
func InvalidFormat(field, expectedFormat string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: fmt.Sprintf("Invalid format for %s. Expected: %s", field, expectedFormat),
		Details: map[string]any{"field": field, "expected_format": expectedFormat},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// DatabaseError creates a new AppError for a persistence error.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred. Please try again.",
		Retryable: true, Cause: cause,
	}
}

// PublishFailed creates a new AppError for an event that could not be delivered.
func PublishFailed(topic string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePublishFailed, Message: fmt.Sprintf("Failed to publish to %s.", topic),
		Retryable: true,
		Details:   map[string]any{"topic": topic},
		Cause:     cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err is an AppError flagged as retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}
