package errors

import "net/http"

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

// IsClientError reports whether code is in the 4xx range
func IsClientError(code int) bool {
	return code >= 400 && code < 500
}

// IsServerError reports whether code is in the 5xx range
func IsServerError(code int) bool {
	return code >= 500 && code < 600
}
