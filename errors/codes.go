package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a collaborator is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeEngineFailure indicates the ASR or diarization engine failed.
	ErrCodeEngineFailure ErrorCode = "ENGINE_FAILURE"
	// ErrCodeEngineBusy indicates no inference slot could be acquired.
	ErrCodeEngineBusy ErrorCode = "ENGINE_BUSY"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidFormat indicates a payload has an unexpected shape.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodePrecondition indicates a pipeline stage received input that
	// violates its structural contract. Always a defect.
	ErrCodePrecondition ErrorCode = "PRECONDITION_VIOLATION"
	// ErrCodeCancelled indicates the caller abandoned the invocation.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeDatabaseError indicates a persistence error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	// ErrCodePublishFailed indicates an event could not be published.
	ErrCodePublishFailed ErrorCode = "PUBLISH_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeEngineFailure:      true,
	ErrCodeEngineBusy:         true,
	ErrCodeDatabaseError:      true,
	ErrCodePublishFailed:      true,
	ErrCodeInternal:           false,
	ErrCodePrecondition:       false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
