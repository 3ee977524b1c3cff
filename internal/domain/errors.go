package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a domain error code.
type ErrorCode string

const (
	ErrCodeTaskNotFound        ErrorCode = "TASK_NOT_FOUND"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeCycleDetected       ErrorCode = "CYCLE_DETECTED"
	ErrCodePrecedenceViolation ErrorCode = "PRECEDENCE_VIOLATION"
	ErrCodeInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrCodeProjectNotFound     ErrorCode = "PROJECT_NOT_FOUND"
)

// DomainError represents an error in the domain layer with context.
// Every rejection leaves the task set in its last valid state.
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewTaskNotFoundError creates a task not found error.
func NewTaskNotFoundError(taskID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTaskNotFound,
		Message: fmt.Sprintf("Task %s not found", taskID),
		Context: map[string]interface{}{"id": taskID},
	}
}

// NewValidationError creates a validation error.
func NewValidationError(details []string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Context: map[string]interface{}{"details": details},
	}
}

// NewCycleDetectedError creates a cyclic dependency error.
// path is the cycle the rejected edge would have closed.
func NewCycleDetectedError(path []string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCycleDetected,
		Message: "Adding this dependency would create a cycle",
		Context: map[string]interface{}{"path": path},
	}
}

// NewPrecedenceViolationError creates an error for completing a task whose
// dependencies are not all completed.
func NewPrecedenceViolationError(taskID string, unmet []string) *DomainError {
	return &DomainError{
		Code:    ErrCodePrecedenceViolation,
		Message: fmt.Sprintf("Task %s has unfinished dependencies", taskID),
		Context: map[string]interface{}{
			"id":    taskID,
			"unmet": unmet,
		},
	}
}

// NewProjectNotFoundError creates a project not found error.
func NewProjectNotFoundError(project string) *DomainError {
	return &DomainError{
		Code:    ErrCodeProjectNotFound,
		Message: fmt.Sprintf("Project %s not found", project),
		Context: map[string]interface{}{"project": project},
	}
}

// NewInternalError creates an internal error.
func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternalError,
		Message: "An internal error occurred",
		Context: map[string]interface{}{},
	}
}

// IsCode reports whether err, or an error it wraps, is a *DomainError with
// the given code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
