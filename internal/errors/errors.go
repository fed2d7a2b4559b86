// Package errors provides centralized error definitions and error handling utilities
// for msgslot. It defines the sentinel errors of the message slot protocol, the
// SlotError domain type that carries operation context, wire error codes, and
// error classification helpers.
//
// # Error Types
//
// Sentinel errors name each failure of the slot protocol:
//   - ErrInvalidArgument: channel id 0 on select, instance out of range on open
//   - ErrInvalidState: read or write before any channel is selected
//   - ErrNoData: read from a channel that was never written
//   - ErrInsufficientSpace: read buffer smaller than the stored message
//   - ErrEmptyMessage, ErrMessageTooLarge: write length outside 1..=128
//   - ErrResourceExhausted: a channel or handle limit was reached
//   - ErrBusy: the admission policy refused an open
//
// SlotError wraps one of these with the operation, instance and channel that
// produced it. ValidationError covers configuration and command-line input.
//
// # Usage
//
//	err := errors.NewSlotError("write rejected", errors.ErrMessageTooLarge).
//	    WithOp("write").WithInstance(5).WithChannel(7)
//
//	if errors.Is(err, errors.ErrMessageTooLarge) { ... }
//
//	var slotErr *errors.SlotError
//	if errors.As(err, &slotErr) { ... }
//
// # Error Classification
//
//   - Retryable: NoData and Busy may succeed if the caller tries again later;
//     nothing in msgslot retries internally
//   - UserFacing: every slot and validation error is safe to show
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Slot protocol sentinel errors
var (
	// ErrInvalidArgument indicates a reserved channel id or an out-of-range instance.
	ErrInvalidArgument = New("invalid argument")
	// ErrInvalidState indicates a read or write before any channel was selected.
	ErrInvalidState = New("no channel selected")
	// ErrNoData indicates a read from a channel that holds no message.
	ErrNoData = New("no message available")
	// ErrInsufficientSpace indicates a read buffer smaller than the stored message.
	ErrInsufficientSpace = New("buffer too small for message")
	// ErrMessageTooLarge indicates a write longer than the maximum message length.
	ErrMessageTooLarge = New("message too large")
	// ErrEmptyMessage indicates a zero-length write.
	ErrEmptyMessage = New("empty message")
	// ErrResourceExhausted indicates a channel or handle could not be allocated.
	ErrResourceExhausted = New("resource exhausted")
)

// Device lifecycle sentinel errors
var (
	// ErrBusy indicates the admission policy refused an open.
	ErrBusy = New("device busy")
	// ErrDeviceClosed indicates the device has been torn down.
	ErrDeviceClosed = New("device closed")
	// ErrHandleClosed indicates an operation on a handle that was already closed.
	ErrHandleClosed = New("handle closed")
	// ErrUnknownHandle indicates a wire request naming a handle the session never opened.
	ErrUnknownHandle = New("unknown handle")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// MsgslotError is the base interface for all msgslot errors.
type MsgslotError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the operation may succeed if the caller
	// issues it again later.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain Error
// -----------------------------------------------------------------------------

// SlotError represents a failed slot operation.
//
// Example:
//
//	err := errors.NewSlotError("read rejected", errors.ErrInsufficientSpace).
//	    WithOp("read").WithInstance(5).WithChannel(7)
//	fmt.Println(err) // "slot error [op=read, instance=5, channel=7]: read rejected: buffer too small for message"
type SlotError struct {
	baseError
	Op       string
	Instance int    // -1 when not known
	Channel  uint32 // 0 when no channel is involved
}

// NewSlotError creates a new SlotError. Severity and retryability are derived
// from the cause.
func NewSlotError(message string, cause error) *SlotError {
	return &SlotError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   severityFor(cause),
			retryable:  retryableCause(cause),
			userFacing: true,
		},
		Instance: -1,
	}
}

// WithOp records the operation that failed.
func (e *SlotError) WithOp(op string) *SlotError {
	e.Op = op
	return e
}

// WithInstance records the slot instance.
func (e *SlotError) WithInstance(instance int) *SlotError {
	e.Instance = instance
	return e
}

// WithChannel records the channel id.
func (e *SlotError) WithChannel(channel uint32) *SlotError {
	e.Channel = channel
	return e
}

// Error returns the formatted error message.
func (e *SlotError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Instance >= 0 {
		parts = append(parts, fmt.Sprintf("instance=%d", e.Instance))
	}
	if e.Channel != 0 {
		parts = append(parts, fmt.Sprintf("channel=%d", e.Channel))
	}

	prefix := "slot error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("slot error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SlotError) Is(target error) bool {
	if _, ok := target.(*SlotError); ok {
		return true
	}
	return e.baseError.Is(target)
}

func severityFor(cause error) Severity {
	switch {
	case cause == nil:
		return SeverityError
	case errors.Is(cause, ErrNoData), errors.Is(cause, ErrBusy):
		return SeverityInfo
	case errors.Is(cause, ErrResourceExhausted):
		return SeverityError
	default:
		return SeverityWarning
	}
}

func retryableCause(cause error) bool {
	return cause != nil && (errors.Is(cause, ErrNoData) || errors.Is(cause, ErrBusy))
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("channel id must be a positive integer")
//	err = err.WithField("channel").WithValue("abc")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a condition that may clear
// if the caller issues the same operation later. This checks for:
//   - Errors implementing MsgslotError with IsRetryable() returning true
//   - Errors wrapping ErrNoData or ErrBusy
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var msErr MsgslotError
	if As(err, &msErr) {
		return msErr.IsRetryable()
	}

	return retryableCause(err)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var msErr MsgslotError
	if As(err, &msErr) {
		return msErr.IsUserFacing()
	}

	return CodeOf(err) != CodeInternal
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement MsgslotError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var msErr MsgslotError
	if As(err, &msErr) {
		return msErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to accept connection")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to listen on %s", addr)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
