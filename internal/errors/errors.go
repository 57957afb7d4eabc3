package errors

import (
	"errors"
	"fmt"

	"github.com/mcncl/jsonkit/internal/models"
)

// Standard application errors
var (
	ErrEmptyInput     = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON    = errors.New("invalid JSON format")
	ErrMultipleJSON   = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrUnexpectedEnd  = errors.New("unexpected end of JSON input")
	ErrInputTooLarge  = errors.New("input exceeds the maximum allowed size")
	ErrDepthExceeded  = errors.New("nesting exceeds the maximum allowed depth")
	ErrTimeout        = errors.New("processing exceeded its time budget")
	ErrInvalidIndent  = errors.New("indent width must be a positive integer")
	ErrFileNotFound   = errors.New("file not found")
	ErrFileEmpty      = errors.New("file is empty")
	ErrNoInput        = errors.New("no input provided: pass a file, pipe JSON data to stdin or use --last")
	ErrNoSavedInput   = errors.New("no saved input")
	ErrInvalidSetting = errors.New("invalid configuration value")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput         ErrorType = "input"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeLimit         ErrorType = "limit"
	ErrorTypeState         ErrorType = "state"
	ErrorTypeOutput        ErrorType = "output"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type     ErrorType
	Message  string
	Position *models.Position
	Err      error
}

// Error implements error interface
func (e *AppError) Error() string {
	msg := e.Message
	if e.Position != nil {
		msg = fmt.Sprintf("%s at %s", msg, e.Position)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewParsingErrorAt creates a parsing error pointing at a location in the input.
func NewParsingErrorAt(message string, pos models.Position, err error) *AppError {
	return &AppError{
		Type:     ErrorTypeParsing,
		Message:  message,
		Position: &pos,
		Err:      err,
	}
}

// NewConfigurationError creates a new error for an invalid setting.
// Callers usually recover by substituting a default.
func NewConfigurationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewLimitError creates a new error for input exceeding a resource bound
func NewLimitError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeLimit,
		Message: message,
		Err:     err,
	}
}

// NewStateError creates a new error related to the saved session state
func NewStateError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeState,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// IsParseError reports whether err is a JSON parsing error.
func IsParseError(err error) bool {
	return errors.Is(err, &AppError{Type: ErrorTypeParsing})
}

// IsLimitError reports whether err is a resource limit error.
func IsLimitError(err error) bool {
	return errors.Is(err, &AppError{Type: ErrorTypeLimit})
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, &AppError{Type: ErrorTypeConfiguration})
}

// PositionOf returns the source position attached to err, if any.
func PositionOf(err error) (models.Position, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Position != nil {
		return *appErr.Position, true
	}
	return models.Position{}, false
}

// Describe returns the message of an application error without its type
// prefix, for status lines such as "Invalid: ...".
func Describe(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	msg := appErr.Message
	if appErr.Position != nil {
		msg = fmt.Sprintf("%s at %s", msg, appErr.Position)
	}
	return msg
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", Describe(appErr))
		case ErrorTypeParsing:
			return fmt.Sprintf("Invalid JSON: %s", Describe(appErr))
		case ErrorTypeConfiguration:
			return fmt.Sprintf("Configuration error: %s", Describe(appErr))
		case ErrorTypeLimit:
			return fmt.Sprintf("Limit exceeded: %s", Describe(appErr))
		case ErrorTypeState:
			return fmt.Sprintf("Saved state error: %s", Describe(appErr))
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", Describe(appErr))
		default:
			return fmt.Sprintf("Error: %s", Describe(appErr))
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Pass a file, pipe JSON data to stdin or use --last."
	}
	if errors.Is(err, ErrTimeout) {
		return "Error: Processing took too long and was stopped."
	}

	return fmt.Sprintf("Error: %v", err)
}
