package errors

import (
	"errors"
	"fmt"
)

// IsNetworkError reports whether err is (or wraps) a NetworkError
func IsNetworkError(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}

// IsServiceError reports whether err is (or wraps) a ServiceError
func IsServiceError(err error) bool {
	var e *ServiceError
	return errors.As(err, &e)
}

// IsTimeoutError reports whether err is (or wraps) a TimeoutError
func IsTimeoutError(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// IsExportError reports whether err is (or wraps) an ExportError
func IsExportError(err error) bool {
	var e *ExportError
	return errors.As(err, &e)
}

// IsUnsupportedType reports whether err is (or wraps) an UnsupportedTypeError
func IsUnsupportedType(err error) bool {
	return errors.Is(err, ErrUnsupportedType)
}

// GetHTTPStatus extracts the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var svc *ServiceError
	if errors.As(err, &svc) {
		return svc.StatusCode
	}
	var exp *ExportError
	if errors.As(err, &exp) {
		return exp.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var svc *ServiceError
	if errors.As(err, &svc) {
		return svc.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// UserMessage classifies err into the single human-readable line shown in
// place of the pending message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var svc *ServiceError
	if errors.As(err, &svc) {
		return svc.Text()
	}

	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		if timeout.After > 0 {
			return fmt.Sprintf("Request timed out after %s. Is the service running?", timeout.After)
		}
		return "Request timed out. Is the service running?"
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return NoResponseMessage
	}

	var unexpected *UnexpectedError
	if errors.As(err, &unexpected) {
		return unexpected.Message
	}

	return err.Error()
}
