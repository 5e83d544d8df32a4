package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel errors for input handling. Wrap these so callers can classify
// with errors.Is without knowing which component failed.
var (
	// ErrFileNotFound is returned when the input file does not exist
	ErrFileNotFound = stderrors.New("input file not found")

	// ErrUnsupportedInput is returned for inputs with an unknown extension
	ErrUnsupportedInput = stderrors.New("unsupported input format")

	// ErrNoTable is returned when markup contains no table frame
	ErrNoTable = stderrors.New("no table found in markup")
)

// ErrorType represents the type of extraction error
type ErrorType string

const (
	// ErrTypeInput marks errors that abort the whole invocation
	ErrTypeInput ErrorType = "INPUT"
	// ErrTypeParse marks per-table markup failures, downgraded by the pipeline
	ErrTypeParse ErrorType = "PARSE"
	// ErrTypeMapping marks field-mapping configuration failures
	ErrTypeMapping ErrorType = "MAPPING"
	// ErrTypeExport marks result-sink failures
	ErrTypeExport ErrorType = "EXPORT"
)

// ExtractError represents an extraction-specific error
type ExtractError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with ExtractError
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *ExtractError) WithContext(key string, value interface{}) *ExtractError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewExtractError creates a new extraction error
func NewExtractError(errType ErrorType, message string, cause error) *ExtractError {
	return &ExtractError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewInputError creates an input error. Input errors are fatal for the
// invocation that raised them.
func NewInputError(message string, cause error) *ExtractError {
	return NewExtractError(ErrTypeInput, message, cause)
}

// NewParseError creates a parse error for one table's markup
func NewParseError(message string, cause error) *ExtractError {
	return NewExtractError(ErrTypeParse, message, cause)
}

// NewMappingError creates a mapping configuration error
func NewMappingError(message string, cause error) *ExtractError {
	return NewExtractError(ErrTypeMapping, message, cause)
}

// NewExportError creates a result-sink error
func NewExportError(message string, cause error) *ExtractError {
	return NewExtractError(ErrTypeExport, message, cause)
}

// IsInput reports whether err should abort the invocation
func IsInput(err error) bool {
	if stderrors.Is(err, ErrFileNotFound) || stderrors.Is(err, ErrUnsupportedInput) {
		return true
	}
	var xerr *ExtractError
	if stderrors.As(err, &xerr) {
		return xerr.Type == ErrTypeInput
	}
	return false
}

// IsParse reports whether err downgrades to a degraded table result
func IsParse(err error) bool {
	if stderrors.Is(err, ErrNoTable) {
		return true
	}
	var xerr *ExtractError
	if stderrors.As(err, &xerr) {
		return xerr.Type == ErrTypeParse
	}
	return false
}

// GetErrorType returns the type of the error, or "" for foreign errors
func GetErrorType(err error) ErrorType {
	var xerr *ExtractError
	if stderrors.As(err, &xerr) {
		return xerr.Type
	}
	return ""
}
