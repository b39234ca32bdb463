package sameday

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes carried by Error.
const (
	CodeAuthentication   = "AUTHENTICATION_ERROR"
	CodeRemoteValidation = "REMOTE_VALIDATION_ERROR"
	CodeTransport        = "TRANSPORT_ERROR"
	CodeDecode           = "DECODE_ERROR"
	CodeEncode           = "ENCODE_ERROR"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrAuthentication indicates the login call failed.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRemoteValidation indicates the API answered with a non-2xx status.
	ErrRemoteValidation = errors.New("remote validation failed")

	// ErrTransport indicates no response was received.
	ErrTransport = errors.New("transport failure")

	// ErrDecode indicates a 2xx response body could not be decoded.
	ErrDecode = errors.New("response decode failed")

	// ErrEncode indicates a request could not be encoded.
	ErrEncode = errors.New("request encode failed")

	// ErrMissingCredentials indicates a strict client was built without
	// username, password or base URL.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrInvalidAWB indicates an empty AWB number was given to tracking.
	ErrInvalidAWB = errors.New("awb number is required")
)

var codeSentinels = map[string]error{
	CodeAuthentication:   ErrAuthentication,
	CodeRemoteValidation: ErrRemoteValidation,
	CodeTransport:        ErrTransport,
	CodeDecode:           ErrDecode,
	CodeEncode:           ErrEncode,
}

// Error is returned by every API operation.
type Error struct {
	Operation  string
	Code       string
	Message    string
	StatusCode int
	// Children is the raw errors.children payload of a validation response.
	Children json.RawMessage
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("sameday %s error (%s): %s", e.Operation, e.Code, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code, or the sentinel for this error's code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	if sentinel, ok := codeSentinels[e.Code]; ok {
		return target == sentinel
	}
	return false
}

// NewError creates a new Error.
func NewError(operation, code, message string) *Error {
	return &Error{
		Operation: operation,
		Code:      code,
		Message:   message,
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

// WithChildren attaches the validation children payload.
func (e *Error) WithChildren(children json.RawMessage) *Error {
	e.Children = children
	return e
}

// ValidationChildren returns the errors.children payload carried by err, or
// nil when err carries none.
func ValidationChildren(err error) json.RawMessage {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Children
	}
	return nil
}
