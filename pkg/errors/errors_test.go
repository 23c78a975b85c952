package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestKeeperError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *KeeperError
		wantMsg string
	}{
		{
			name: "error without wrapped error",
			err: &KeeperError{
				Code:    ErrCodeGoalNotFound,
				Message: "goal not found: 42",
				Err:     nil,
			},
			wantMsg: "GOAL_NOT_FOUND: goal not found: 42",
		},
		{
			name: "error with wrapped error",
			err: &KeeperError{
				Code:    ErrCodeDatabaseError,
				Message: "database error during query",
				Err:     errors.New("connection timeout"),
			},
			wantMsg: "DATABASE_ERROR: database error during query: connection timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.wantMsg {
				t.Errorf("KeeperError.Error() = %v, want %v", got, tt.wantMsg)
			}
		})
	}
}

func TestKeeperError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	err := &KeeperError{
		Code:    ErrCodeDatabaseError,
		Message: "test error",
		Err:     originalErr,
	}

	unwrapped := err.Unwrap()
	if unwrapped != originalErr {
		t.Errorf("Unwrap() returned %v, want %v", unwrapped, originalErr)
	}
}

func TestErrGoalNotFound(t *testing.T) {
	err := ErrGoalNotFound(123)

	if err.Code != ErrCodeGoalNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeGoalNotFound)
	}

	if !strings.Contains(err.Message, "123") {
		t.Errorf("Message should contain goal ID 123, got %v", err.Message)
	}
}

func TestErrMatchNotFound(t *testing.T) {
	err := ErrMatchNotFound(8234567890)

	if err.Code != ErrCodeMatchNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMatchNotFound)
	}

	if !strings.Contains(err.Message, "8234567890") {
		t.Errorf("Message should contain match ID, got %v", err.Message)
	}
}

func TestErrChallengeAlreadyAccepted(t *testing.T) {
	weekStart := "2026-08-30"
	err := ErrChallengeAlreadyAccepted(weekStart)

	if err.Code != ErrCodeChallengeAccepted {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeChallengeAccepted)
	}

	if !strings.Contains(err.Message, weekStart) {
		t.Errorf("Message should contain week start %v, got %v", weekStart, err.Message)
	}
}

func TestErrRerollLimitReached(t *testing.T) {
	weekStart := "2026-08-30"
	err := ErrRerollLimitReached(weekStart)

	if err.Code != ErrCodeRerollLimitReached {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRerollLimitReached)
	}

	if !strings.Contains(err.Message, weekStart) {
		t.Errorf("Message should contain week start %v, got %v", weekStart, err.Message)
	}
}

func TestErrWeekSkipped(t *testing.T) {
	weekStart := "2026-08-23"
	err := ErrWeekSkipped(weekStart)

	if err.Code != ErrCodeWeekSkipped {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeWeekSkipped)
	}

	if !strings.Contains(err.Message, weekStart) {
		t.Errorf("Message should contain week start %v, got %v", weekStart, err.Message)
	}
}

func TestErrDatabaseError(t *testing.T) {
	operation := "batch insert"
	originalErr := errors.New("connection lost")
	err := ErrDatabaseError(operation, originalErr)

	if err.Code != ErrCodeDatabaseError {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDatabaseError)
	}

	if !strings.Contains(err.Message, operation) {
		t.Errorf("Message should contain operation %v, got %v", operation, err.Message)
	}

	if err.Err != originalErr {
		t.Errorf("Wrapped error = %v, want %v", err.Err, originalErr)
	}
}

func TestErrConfigInvalid(t *testing.T) {
	reason := "unknown suggestion difficulty"
	err := ErrConfigInvalid(reason)

	if err.Code != ErrCodeConfigInvalid {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConfigInvalid)
	}

	if !strings.Contains(err.Message, reason) {
		t.Errorf("Message should contain reason %v, got %v", reason, err.Message)
	}
}

func TestErrProviderError(t *testing.T) {
	operation := "fetch match details"
	originalErr := errors.New("503 service unavailable")
	err := ErrProviderError(operation, originalErr)

	if err.Code != ErrCodeProviderError {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeProviderError)
	}

	if !strings.Contains(err.Message, operation) {
		t.Errorf("Message should contain operation %v, got %v", operation, err.Message)
	}

	if err.Err != originalErr {
		t.Errorf("Wrapped error = %v, want %v", err.Err, originalErr)
	}
}

func TestErrValidationFailed(t *testing.T) {
	field := "target_value"
	reason := "must be positive"
	err := ErrValidationFailed(field, reason)

	if err.Code != ErrCodeValidationFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeValidationFailed)
	}

	if !strings.Contains(err.Message, field) {
		t.Errorf("Message should contain field %v, got %v", field, err.Message)
	}

	if !strings.Contains(err.Message, reason) {
		t.Errorf("Message should contain reason %v, got %v", reason, err.Message)
	}
}

func TestNewKeeperError(t *testing.T) {
	code := "TEST_CODE"
	message := "test message"
	originalErr := errors.New("wrapped error")

	err := NewKeeperError(code, message, originalErr)

	if err.Code != code {
		t.Errorf("Code = %v, want %v", err.Code, code)
	}

	if err.Message != message {
		t.Errorf("Message = %v, want %v", err.Message, message)
	}

	if err.Err != originalErr {
		t.Errorf("Wrapped error = %v, want %v", err.Err, originalErr)
	}
}

func TestErrorWrapping(t *testing.T) {
	// Test that errors.Is and errors.As work with KeeperError
	originalErr := errors.New("database connection failed")
	keeperErr := ErrDatabaseError("query", originalErr)

	if !errors.Is(keeperErr, originalErr) {
		t.Error("errors.Is should recognize wrapped error")
	}

	var coded *KeeperError
	if !errors.As(keeperErr, &coded) {
		t.Fatal("errors.As should extract *KeeperError")
	}
	if coded.Code != ErrCodeDatabaseError {
		t.Errorf("Code = %v, want %v", coded.Code, ErrCodeDatabaseError)
	}
}
