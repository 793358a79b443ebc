package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeEngineFailure, "asr crashed")
	if !err.Retryable {
		t.Error("ENGINE_FAILURE should be retryable")
	}
}

func TestAppError_Precondition_Success(t *testing.T) {
	err := Precondition("smooth", "interval 3 has end <= start")
	if err.Code != ErrCodePrecondition {
		t.Errorf("expected PRECONDITION_VIOLATION, got %s", err.Code)
	}
	if err.Retryable {
		t.Error("precondition violations must not be retryable")
	}
	if err.Details["stage"] != "smooth" {
		t.Errorf("expected stage=smooth, got %v", err.Details["stage"])
	}
	if !strings.Contains(err.Message, "interval 3") {
		t.Errorf("expected reason in message, got %q", err.Message)
	}
}

func TestAppError_EngineFailure_Success(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := EngineFailure("whisper", cause)
	if err.Code != ErrCodeEngineFailure {
		t.Errorf("expected ENGINE_FAILURE, got %s", err.Code)
	}
	if !err.Retryable {
		t.Error("EngineFailure should be retryable")
	}
	if err.Details["engine"] != "whisper" {
		t.Errorf("expected engine=whisper, got %v", err.Details["engine"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_InvalidTransition_Success(t *testing.T) {
	err := InvalidTransition("completed", "recording")
	if err.Code != ErrCodeConflict {
		t.Errorf("expected CONFLICT, got %s", err.Code)
	}
	if err.Details["from"] != "completed" || err.Details["to"] != "recording" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("meeting", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
	err = NotFound("meeting", "m-1")
	if err.Details["id"] != "m-1" {
		t.Errorf("expected id=m-1, got %v", err.Details["id"])
	}
}

func TestAppError_InvalidInput_Success(t *testing.T) {
	err := InvalidInput("chunks", "must not be null")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if err.Details["field"] != "chunks" {
		t.Errorf("expected field=chunks, got %v", err.Details["field"])
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NotFound("meeting", "1").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := NotFound("meeting", "1").WithDetails(map[string]any{"extra": "info"})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["resource"] != "meeting" {
		t.Error("expected original details to be preserved")
	}

	err.WithDetails(map[string]any{"another": "detail"})
	if err.Details["another"] != "detail" || err.Details["extra"] != "info" {
		t.Errorf("expected merged details, got %v", err.Details)
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("underlying")
	if Internal(cause).Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if NotFound("x", "").Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("pyannote"), ErrCodeServiceUnavailable, true},
		{"Timeout", Timeout("transcribe"), ErrCodeTimeout, true},
		{"EngineBusy", EngineBusy("accelerator", nil), ErrCodeEngineBusy, true},
		{"Cancelled", Cancelled("align", nil), ErrCodeCancelled, false},
		{"Conflict", Conflict("meeting already stopped"), ErrCodeConflict, false},
		{"InvalidFormat", InvalidFormat("start", "seconds"), ErrCodeInvalidFormat, false},
		{"DatabaseError", DatabaseError(nil), ErrCodeDatabaseError, true},
		{"PublishFailed", PublishFailed("meetings", nil), ErrCodePublishFailed, true},
		{"Validation", Validation("bad config"), ErrCodeInvalidInput, false},
		{"Internal", Internal(nil), ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestErrorCode_IsRetryableCode_Table(t *testing.T) {
	retryable := []ErrorCode{ErrCodeServiceUnavailable, ErrCodeTimeout, ErrCodeEngineFailure, ErrCodeEngineBusy, ErrCodeDatabaseError, ErrCodePublishFailed}
	for _, code := range retryable {
		if !IsRetryableCode(code) {
			t.Errorf("expected %s to be retryable", code)
		}
	}

	nonRetryable := []ErrorCode{ErrCodeNotFound, ErrCodeConflict, ErrCodeInvalidInput, ErrCodeInternal, ErrCodePrecondition, ErrCodeCancelled}
	for _, code := range nonRetryable {
		if IsRetryableCode(code) {
			t.Errorf("expected %s to NOT be retryable", code)
		}
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	appErr := Precondition("redundancy", "unsorted")
	wrapped := fmt.Errorf("wrap: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodePrecondition {
		t.Errorf("expected PRECONDITION_VIOLATION, got %s", got.Code)
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to return true for wrapped AppError")
	}

	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
}

func TestIsCode_And_IsRetryable(t *testing.T) {
	err := fmt.Errorf("outer: %w", EngineFailure("pyannote", nil))
	if !IsCode(err, ErrCodeEngineFailure) {
		t.Error("expected IsCode to match wrapped engine failure")
	}
	if IsCode(err, ErrCodePrecondition) {
		t.Error("expected IsCode to reject other codes")
	}
	if !IsRetryable(err) {
		t.Error("expected wrapped engine failure to be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are not retryable")
	}
}
