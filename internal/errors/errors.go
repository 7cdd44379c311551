// Package errors provides custom error types for the estatechat client.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for common cases
var (
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrNoResponse        = errors.New("no response from server")
	ErrServiceFailed     = errors.New("service returned an error")
	ErrInvalidResponse   = errors.New("invalid response format")
	ErrTimeout           = errors.New("request timed out")
	ErrExportFailed      = errors.New("failed to generate PDF")
	ErrInvariantViolated = errors.New("conversation invariant violated")
)

// NoResponseMessage is shown when the analytics service could not be reached.
const NoResponseMessage = "No response from server. Is the service running?"

// UnsupportedTypeError is returned when a selected file is not a spreadsheet
type UnsupportedTypeError struct {
	FileName string
	MIMEType string
}

func (e *UnsupportedTypeError) Error() string {
	if e.MIMEType == "" {
		return fmt.Sprintf("unsupported file type: %s (expected .xlsx, .xls or .csv)", e.FileName)
	}
	return fmt.Sprintf("unsupported file type: %s [%s] (expected .xlsx, .xls or .csv)", e.FileName, e.MIMEType)
}

// Is allows comparison with sentinel errors
func (e *UnsupportedTypeError) Is(target error) bool {
	if target == ErrUnsupportedType {
		return true
	}
	_, ok := target.(*UnsupportedTypeError)
	return ok
}

// NewUnsupportedTypeError creates a new UnsupportedTypeError
func NewUnsupportedTypeError(fileName, mimeType string) *UnsupportedTypeError {
	return &UnsupportedTypeError{FileName: fileName, MIMEType: mimeType}
}

// NetworkError represents a request that was sent but never got a response
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("network error during %s at %s", e.Operation, e.Endpoint)
	}
	return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNoResponse {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// ServiceError represents an error payload returned by the analytics service.
// Structured is true when the body matched {"error", "details"?, "found_columns"?};
// otherwise Raw holds the body as returned.
type ServiceError struct {
	StatusCode   int
	Endpoint     string
	Structured   bool
	Message      string
	Details      string
	FoundColumns []string
	HasColumns   bool
	Raw          string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Text())
}

// Text renders the error the way it is shown in the conversation.
func (e *ServiceError) Text() string {
	if !e.Structured {
		if e.Raw == "" {
			return fmt.Sprintf("request failed with status code %d", e.StatusCode)
		}
		return e.Raw
	}

	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Details != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Details)
	}
	if e.HasColumns {
		sb.WriteString("\n\nFound columns: ")
		sb.WriteString(strings.Join(e.FoundColumns, ", "))
	}
	return sb.String()
}

// Is allows comparison with sentinel errors
func (e *ServiceError) Is(target error) bool {
	if target == ErrServiceFailed {
		return true
	}
	_, ok := target.(*ServiceError)
	return ok
}

// NewStructuredServiceError creates a ServiceError from a recognized error body
func NewStructuredServiceError(statusCode int, endpoint, message, details string, foundColumns []string, hasColumns bool) *ServiceError {
	return &ServiceError{
		StatusCode:   statusCode,
		Endpoint:     endpoint,
		Structured:   true,
		Message:      message,
		Details:      details,
		FoundColumns: foundColumns,
		HasColumns:   hasColumns,
	}
}

// NewUnstructuredServiceError creates a ServiceError carrying the raw body
func NewUnstructuredServiceError(statusCode int, endpoint, raw string) *ServiceError {
	return &ServiceError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Raw:        raw,
	}
}

// UnexpectedError represents any other client-side failure, such as a request
// that could not be built or a response that does not match the expected schema
type UnexpectedError struct {
	Message string
	Cause   error
}

func (e *UnexpectedError) Error() string {
	return e.Message
}

func (e *UnexpectedError) Unwrap() error {
	return e.Cause
}

// NewUnexpectedError creates a new UnexpectedError
func NewUnexpectedError(message string, cause error) *UnexpectedError {
	return &UnexpectedError{Message: message, Cause: cause}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid response: %s", e.Message)
	}
	return fmt.Sprintf("invalid response: %s (at %s)", e.Message, e.Path)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// TimeoutError represents a request that exceeded its deadline
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	if e.After <= 0 {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out after %s", e.After)
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrTimeout {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(after time.Duration) *TimeoutError {
	return &TimeoutError{After: after}
}

// ExportError represents a non-success response from the PDF service
type ExportError struct {
	StatusCode int
	Detail     string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to generate PDF: %d - %s", e.StatusCode, e.Detail)
}

// Is allows comparison with sentinel errors
func (e *ExportError) Is(target error) bool {
	if target == ErrExportFailed {
		return true
	}
	_, ok := target.(*ExportError)
	return ok
}

// NewExportError creates a new ExportError
func NewExportError(statusCode int, detail string) *ExportError {
	return &ExportError{StatusCode: statusCode, Detail: detail}
}

// InvariantError is returned when a store mutation would break the
// placeholder discipline of the conversation log
type InvariantError struct {
	Operation string
	Reason    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Operation, e.Reason)
}

// Is allows comparison with sentinel errors
func (e *InvariantError) Is(target error) bool {
	if target == ErrInvariantViolated {
		return true
	}
	_, ok := target.(*InvariantError)
	return ok
}

// NewInvariantError creates a new InvariantError
func NewInvariantError(operation, reason string) *InvariantError {
	return &InvariantError{Operation: operation, Reason: reason}
}
