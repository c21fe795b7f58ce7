package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different kinds of governance errors surfaced to callers
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeAuthentication  ErrorType = "authentication"
	ErrorTypeUnauthorized    ErrorType = "unauthorized"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeInvalidWindow   ErrorType = "invalid_window"
	ErrorTypeWindowClosed    ErrorType = "window_closed"
	ErrorTypeInvalidChoice   ErrorType = "invalid_choice"
	ErrorTypeAlreadyExecuted ErrorType = "already_executed"
	ErrorTypeAlreadyWithdrawn ErrorType = "already_withdrawn"
	ErrorTypeInsufficientApprovals ErrorType = "insufficient_approvals"
	ErrorTypeExternalExecution     ErrorType = "external_execution_failed"
	ErrorTypeInternal              ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewUnauthorizedError creates an error for a caller lacking a permission
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidWindowError creates an error for an invalid election window
func NewInvalidWindowError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidWindow,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewWindowClosedError creates an error for an operation outside the voting window
func NewWindowClosedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeWindowClosed,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInvalidChoiceError creates an error for a ballot naming an unknown candidate
func NewInvalidChoiceError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidChoice,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewAlreadyExecutedError creates an error for a terminal-state violation
func NewAlreadyExecutedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAlreadyExecuted,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewAlreadyWithdrawnError creates an error for operations on a withdrawn action
func NewAlreadyWithdrawnError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAlreadyWithdrawn,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInsufficientApprovalsError creates an error for execution below threshold
func NewInsufficientApprovalsError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeInsufficientApprovals,
		Message:    message,
		StatusCode: http.StatusConflict,
		Details:    details,
	}
}

// NewExternalExecutionError flags a side effect that failed after the action
// was already marked executed; requires manual review, never rollback.
func NewExternalExecutionError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternalExecution,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// ErrorResponse represents the JSON error response
type ErrorResponse struct {
	Error struct {
		Type      ErrorType              `json:"type"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details,omitempty"`
		RequestID string                 `json:"request_id,omitempty"`
		Timestamp string                 `json:"timestamp"`
	} `json:"error"`
}
