package intersection

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents specific error conditions in the controller
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// An operation received an argument outside its domain
	ErrCodeInvalidArgument
	// Controller configuration is invalid
	ErrCodeInvalidConfiguration
	// A phase value outside the closed enumeration was observed
	ErrCodeInvalidPhase
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeInvalidPhase:
		return "invalid_phase"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// ArgumentError is returned when a caller passes an argument the operation
// cannot accept. The controller state is left untouched.
type ArgumentError struct {
	Code      ErrorCode
	Operation string
	Argument  string
	Message   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s to %s: %s", e.Argument, e.Operation, e.Message)
}

// NewArgumentError creates a new invalid argument error
func NewArgumentError(operation, argument, message string) *ArgumentError {
	return &ArgumentError{
		Code:      ErrCodeInvalidArgument,
		Operation: operation,
		Argument:  argument,
		Message:   message,
	}
}

// NewNegativeDeltaError creates the error Advance returns for a negative delta
func NewNegativeDeltaError(delta time.Duration) *ArgumentError {
	return NewArgumentError("Advance", "delta", fmt.Sprintf("delta %s is negative", delta))
}

// ConfigurationError represents controller configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// PhaseError reports a phase value outside the enumeration. It is only ever
// raised through a panic since no exported path can produce such a value
// inside a controller.
type PhaseError struct {
	Phase   Phase
	Message string
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase error [%d]: %s", uint8(e.Phase), e.Message)
}

// NewInvalidPhaseError creates a new invalid phase error
func NewInvalidPhaseError(p Phase) *PhaseError {
	return &PhaseError{
		Phase:   p,
		Message: "phase is not part of the signal cycle",
	}
}

// IsArgumentError checks if an error is an ArgumentError
func IsArgumentError(err error) bool {
	var target *ArgumentError
	return errors.As(err, &target)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsPhaseError checks if an error is a PhaseError
func IsPhaseError(err error) bool {
	var target *PhaseError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		argErr   *ArgumentError
		cfgErr   *ConfigurationError
		phaseErr *PhaseError
	)
	switch {
	case errors.As(err, &argErr):
		return argErr.Code
	case errors.As(err, &cfgErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &phaseErr):
		return ErrCodeInvalidPhase
	default:
		return ErrCodeNone
	}
}
