package docmirror

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFLICT    = "conflict"
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	EUNAVAILABLE = "unavailable"
)

// Error represents an application-specific error. Errors carry a
// machine-readable code and a human-readable message. Fetch errors caused
// by an HTTP response additionally carry the response status.
type Error struct {
	// Code is the machine-readable error code.
	Code string

	// Message is the human-readable error message.
	Message string

	// Status is the HTTP status that produced the error, if any.
	Status int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docmirror error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// HTTPErrorf constructs an Error that records the HTTP status behind it.
func HTTPErrorf(status int, code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Status:  status,
	}
}

// ErrorCode returns the code of the first Error in err's chain.
// It returns an empty string for nil and EINTERNAL for non-application errors.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message of the first Error in err's chain.
// It returns an empty string for nil and a generic message for
// non-application errors.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorStatus returns the HTTP status recorded on the first Error in err's
// chain, or zero when none is recorded.
func ErrorStatus(err error) int {
	var e *Error
	if err == nil {
		return 0
	} else if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
