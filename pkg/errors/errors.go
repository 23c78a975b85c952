package errors

import "fmt"

// Error codes for the keeper library.
const (
	// Domain errors
	ErrCodeGoalNotFound       = "GOAL_NOT_FOUND"
	ErrCodeMatchNotFound      = "MATCH_NOT_FOUND"
	ErrCodeChallengeNotFound  = "CHALLENGE_NOT_FOUND"
	ErrCodeOptionNotFound     = "OPTION_NOT_FOUND"
	ErrCodeChallengeAccepted  = "CHALLENGE_ALREADY_ACCEPTED"
	ErrCodeWeekSkipped        = "WEEK_SKIPPED"
	ErrCodeRerollLimitReached = "REROLL_LIMIT_REACHED"
	ErrCodeInvalidStatus      = "INVALID_STATUS"

	// Database errors
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeTransactionFailed = "TRANSACTION_FAILED"

	// Config errors
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"

	// Provider integration errors
	ErrCodeProviderError = "PROVIDER_ERROR"
	ErrCodeParseFailed   = "PARSE_FAILED"

	// Validation errors
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidInput     = "INVALID_INPUT"
)

// KeeperError represents an error in the keeper library.
type KeeperError struct {
	Code    string
	Message string
	Err     error
}

func (e *KeeperError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *KeeperError) Unwrap() error {
	return e.Err
}

// NewKeeperError creates a new KeeperError.
func NewKeeperError(code, message string, err error) *KeeperError {
	return &KeeperError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Domain-specific error constructors

// ErrGoalNotFound returns an error when a goal is not found.
func ErrGoalNotFound(goalID int64) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeGoalNotFound,
		Message: fmt.Sprintf("goal not found: %d", goalID),
		Err:     nil,
	}
}

// ErrMatchNotFound returns an error when a match is not found.
func ErrMatchNotFound(matchID int64) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeMatchNotFound,
		Message: fmt.Sprintf("match not found: %d", matchID),
		Err:     nil,
	}
}

// ErrOptionNotFound returns an error when a weekly challenge option is not found.
func ErrOptionNotFound(optionID int64) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeOptionNotFound,
		Message: fmt.Sprintf("challenge option not found: %d", optionID),
		Err:     nil,
	}
}

// ErrChallengeAlreadyAccepted returns an error when a week already has an
// accepted challenge and the caller attempts to accept or reroll.
func ErrChallengeAlreadyAccepted(weekStart string) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeChallengeAccepted,
		Message: fmt.Sprintf("challenge already accepted for week %s", weekStart),
		Err:     nil,
	}
}

// ErrWeekSkipped returns an error when the week was skipped and the caller
// attempts to accept or reroll.
func ErrWeekSkipped(weekStart string) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeWeekSkipped,
		Message: fmt.Sprintf("week %s was skipped", weekStart),
		Err:     nil,
	}
}

// ErrRerollLimitReached returns an error when the reroll budget is exhausted.
func ErrRerollLimitReached(weekStart string) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeRerollLimitReached,
		Message: fmt.Sprintf("reroll limit reached for week %s", weekStart),
		Err:     nil,
	}
}

// ErrDatabaseError wraps database errors.
func ErrDatabaseError(operation string, err error) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeDatabaseError,
		Message: fmt.Sprintf("database error during %s", operation),
		Err:     err,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(reason string) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeConfigInvalid,
		Message: fmt.Sprintf("invalid configuration: %s", reason),
		Err:     nil,
	}
}

// ErrProviderError wraps match provider failures.
func ErrProviderError(operation string, err error) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeProviderError,
		Message: fmt.Sprintf("match provider error during %s", operation),
		Err:     err,
	}
}

// ErrValidationFailed returns a validation error.
func ErrValidationFailed(field, reason string) *KeeperError {
	return &KeeperError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Err:     nil,
	}
}
