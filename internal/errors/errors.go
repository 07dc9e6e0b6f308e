package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// Configuration errors - missing or invalid configuration
	ErrorTypeConfig ErrorType = iota
	// Validation errors - invalid input data (e.g. property values that cannot be encoded)
	ErrorTypeValidation
	// Database errors - query submission failures reported by a backend
	ErrorTypeDatabase
	// Connectivity errors - no live connection handle, or the handle could not be opened
	ErrorTypeConnectivity
	// Decode errors - wire results that do not match an accepted shape
	ErrorTypeDecode
	// NotImplemented errors - operation missing from a client implementation
	ErrorTypeNotImplemented
	// Internal errors - unexpected internal state
	ErrorTypeInternal
)

// Severity represents how critical an error is
type Severity int

const (
	// SeverityLow - can continue with degraded functionality
	SeverityLow Severity = iota
	// SeverityMedium - should be addressed but not fatal
	SeverityMedium
	// SeverityHigh - significant issue, the current query or connection failed
	SeverityHigh
	// SeverityCritical - programming or configuration error
	SeverityCritical
)

// Error represents a structured error with context
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

// Error implements the error interface.
// Without a cause the message is returned verbatim; dependents match on it.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is reports whether target is an *Error of the same type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal returns true if this error should stop execution
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString returns a detailed error message with context
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n",
		severityString(e.Severity),
		typeString(e.Type),
		e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeDatabase:
		return "DATABASE"
	case ErrorTypeConnectivity:
		return "CONNECTIVITY"
	case ErrorTypeDecode:
		return "DECODE"
	case ErrorTypeNotImplemented:
		return "NOT_IMPLEMENTED"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given type, severity, and message
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(3),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(3),
	}
}

// Convenience constructors for common error types

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return New(ErrorTypeConfig, SeverityCritical, message)
}

// ConfigErrorf creates a configuration error with formatting
func ConfigErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

// ValidationErrorf wraps a validation failure with formatting
func ValidationErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return New(ErrorTypeValidation, SeverityHigh, fmt.Sprintf(format, args...))
	}
	return Wrap(err, ErrorTypeValidation, SeverityHigh, fmt.Sprintf(format, args...))
}

// DatabaseErrorf wraps a backend query failure with formatting
func DatabaseErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeDatabase, SeverityHigh, fmt.Sprintf(format, args...))
}

// ConnectivityError creates a connectivity error. The message is kept verbatim.
func ConnectivityError(message string) *Error {
	return New(ErrorTypeConnectivity, SeverityHigh, message)
}

// ConnectivityErrorf wraps a failure to open a connection handle
func ConnectivityErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeConnectivity, SeverityHigh, fmt.Sprintf(format, args...))
}

// DecodeErrorf creates a decode error with formatting
func DecodeErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeDecode, SeverityHigh, fmt.Sprintf(format, args...))
}

// NotImplementedError creates a not-implemented error for the named operation
func NotImplementedError(operation string) *Error {
	return New(ErrorTypeNotImplemented, SeverityCritical, operation+" is not implemented")
}

// IsFatal checks if an error is fatal (should stop execution)
func IsFatal(err error) bool {
	if e, ok := as(err); ok {
		return e.IsFatal()
	}
	return false
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityLow
	}
	if e, ok := as(err); ok {
		return e.Severity
	}
	return SeverityMedium
}

// GetType returns the type of an error
func GetType(err error) ErrorType {
	if e, ok := as(err); ok {
		return e.Type
	}
	return ErrorTypeInternal
}

// IsConnectivity reports whether err (or anything it wraps) is a connectivity error
func IsConnectivity(err error) bool {
	return isType(err, ErrorTypeConnectivity)
}

// IsNotImplemented reports whether err is a not-implemented error
func IsNotImplemented(err error) bool {
	return isType(err, ErrorTypeNotImplemented)
}

// IsDecode reports whether err is a decode error
func IsDecode(err error) bool {
	return isType(err, ErrorTypeDecode)
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

func isType(err error, t ErrorType) bool {
	e, ok := as(err)
	return ok && e.Type == t
}

func as(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}
