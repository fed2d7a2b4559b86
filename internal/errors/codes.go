package errors

import "fmt"

// Code is the wire representation of a slot failure. Servers send the code of
// a failed request; clients rebuild an error with FromCode so that errors.Is
// keeps working across the connection.
type Code string

const (
	CodeOK                Code = ""
	CodeInvalidArgument   Code = "invalid_argument"
	CodeInvalidState      Code = "invalid_state"
	CodeNoData            Code = "no_data"
	CodeInsufficientSpace Code = "insufficient_space"
	CodeMessageTooLarge   Code = "message_too_large"
	CodeEmptyMessage      Code = "empty_message"
	CodeResourceExhausted Code = "resource_exhausted"
	CodeBusy              Code = "busy"
	CodeDeviceClosed      Code = "device_closed"
	CodeHandleClosed      Code = "handle_closed"
	CodeUnknownHandle     Code = "unknown_handle"
	CodeInternal          Code = "internal"
)

// codeSentinels is checked in order; the first match wins.
var codeSentinels = []struct {
	code     Code
	sentinel error
}{
	{CodeInvalidArgument, ErrInvalidArgument},
	{CodeInvalidState, ErrInvalidState},
	{CodeNoData, ErrNoData},
	{CodeInsufficientSpace, ErrInsufficientSpace},
	{CodeMessageTooLarge, ErrMessageTooLarge},
	{CodeEmptyMessage, ErrEmptyMessage},
	{CodeResourceExhausted, ErrResourceExhausted},
	{CodeBusy, ErrBusy},
	{CodeDeviceClosed, ErrDeviceClosed},
	{CodeHandleClosed, ErrHandleClosed},
	{CodeUnknownHandle, ErrUnknownHandle},
}

// CodeOf returns the wire code for err. Errors that do not wrap a known
// sentinel map to CodeInternal; nil maps to CodeOK.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	for _, cs := range codeSentinels {
		if Is(err, cs.sentinel) {
			return cs.code
		}
	}
	return CodeInternal
}

// Sentinel returns the sentinel error for a code, or nil for CodeOK and
// unrecognized codes.
func (c Code) Sentinel() error {
	for _, cs := range codeSentinels {
		if cs.code == c {
			return cs.sentinel
		}
	}
	return nil
}

// RemoteError is a failure reported by the other end of a connection.
type RemoteError struct {
	Code    Code
	Message string
}

// FromCode rebuilds an error received over the wire. It returns nil for CodeOK.
func FromCode(code Code, message string) error {
	if code == CodeOK {
		return nil
	}
	return &RemoteError{Code: code, Message: message}
}

// Error returns the remote message, falling back to the code.
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote error: %s", e.Code)
}

// Is matches the sentinel named by the code.
func (e *RemoteError) Is(target error) bool {
	if _, ok := target.(*RemoteError); ok {
		return true
	}
	if s := e.Code.Sentinel(); s != nil {
		return s == target
	}
	return false
}

// IsRetryable reports whether the remote failure may clear on a later attempt.
func (e *RemoteError) IsRetryable() bool {
	return e.Code == CodeNoData || e.Code == CodeBusy
}
