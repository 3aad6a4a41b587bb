package services

import "fmt"

// Engine error codes returned to controllers, which map them to HTTP statuses
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeDriverUnavailable = "DRIVER_UNAVAILABLE"
	CodeValidationError   = "VALIDATION_ERROR"
)

// EngineError represents a rejected lifecycle operation. Every failure is
// scoped to the single requested operation; nothing here is fatal.
type EngineError struct {
	Code    string
	Message string
}

func (e *EngineError) Error() string {
	return e.Message
}

// NewInvalidTransitionError reports a status change the state machine does not allow
func NewInvalidTransitionError(from, to string) *EngineError {
	return &EngineError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("Cannot transition order from '%s' to '%s'", from, to),
	}
}

// NewUnauthorizedError reports a role or assignment gate failure
func NewUnauthorizedError(message string) *EngineError {
	return &EngineError{Code: CodeUnauthorized, Message: message}
}

// NewDriverUnavailableError reports a fleet roster constraint failure
func NewDriverUnavailableError(driverName, driverStatus string) *EngineError {
	return &EngineError{
		Code:    CodeDriverUnavailable,
		Message: fmt.Sprintf("Driver %s is not available (currently %s)", driverName, driverStatus),
	}
}

// NewValidationError reports missing or malformed order data
func NewValidationError(message string) *EngineError {
	return &EngineError{Code: CodeValidationError, Message: message}
}
